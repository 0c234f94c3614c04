// Package curve implements the piecewise flat-forward zero curves used by the
// CDS pricing and calibration engines.
//
// Both the yield curve and the credit curve share one nodal representation:
// an ordered set of (time, rate) nodes where the product rate*time is
// interpolated linearly in time. Linear interpolation of rt is equivalent to a
// piecewise-constant forward rate (or forward hazard rate) between nodes,
// which is the ISDA standard-model convention. Beyond the last node the zero
// rate is flat; before the first node the first zero rate applies back to
// time zero.
package curve

import (
	"fmt"
	"math"
	"sort"

	"github.com/rzzdr/credit-analytics/pkg/utils/errors"
)

// ZeroCurve is the shared nodal representation. It is immutable; bumped
// variants are produced by WithRate and share no mutable state with the
// original.
type ZeroCurve struct {
	t  []float64
	r  []float64
	rt []float64
}

func newZeroCurve(times, rates []float64) (ZeroCurve, error) {
	n := len(times)
	if n == 0 {
		return ZeroCurve{}, errors.InvalidArgument("curve: need at least one node")
	}
	if len(rates) != n {
		return ZeroCurve{}, errors.InvalidArgumentf("curve: %d times but %d rates", n, len(rates))
	}
	if times[0] < 0 {
		return ZeroCurve{}, errors.InvalidArgumentf("curve: first node time %g must not be negative", times[0])
	}
	for i := 1; i < n; i++ {
		if times[i] <= times[i-1] {
			return ZeroCurve{}, errors.InvalidArgumentf("curve: node times must be strictly increasing, got %g after %g", times[i], times[i-1])
		}
	}
	c := ZeroCurve{
		t:  append([]float64(nil), times...),
		r:  append([]float64(nil), rates...),
		rt: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		c.rt[i] = times[i] * rates[i]
	}
	return c, nil
}

// NumNodes returns the node count
func (c *ZeroCurve) NumNodes() int { return len(c.t) }

// Time returns the time of node i
func (c *ZeroCurve) Time(i int) float64 { return c.t[i] }

// Rate returns the zero rate at node i
func (c *ZeroCurve) Rate(i int) float64 { return c.r[i] }

// Times returns a copy of the node times
func (c *ZeroCurve) Times() []float64 { return append([]float64(nil), c.t...) }

// RT returns rate(t)*t, the integrated forward rate to time t.
// Negative t is a programming error.
func (c *ZeroCurve) RT(t float64) float64 {
	if t < 0 {
		panic(fmt.Sprintf("curve: negative time %g", t))
	}
	n := len(c.t)
	if t <= c.t[0] {
		return c.r[0] * t
	}
	if t >= c.t[n-1] {
		return c.r[n-1] * t
	}
	i := sort.SearchFloat64s(c.t, t)
	w := (t - c.t[i-1]) / (c.t[i] - c.t[i-1])
	return c.rt[i-1] + w*(c.rt[i]-c.rt[i-1])
}

// SingleNodeRTSensitivity returns d(RT(t))/d(rate of node).
func (c *ZeroCurve) SingleNodeRTSensitivity(t float64, node int) float64 {
	if t < 0 {
		panic(fmt.Sprintf("curve: negative time %g", t))
	}
	n := len(c.t)
	if node < 0 || node >= n {
		panic(fmt.Sprintf("curve: node %d out of range [0,%d)", node, n))
	}
	if t <= c.t[0] {
		if node == 0 {
			return t
		}
		return 0
	}
	if t >= c.t[n-1] {
		if node == n-1 {
			return t
		}
		return 0
	}
	i := sort.SearchFloat64s(c.t, t)
	dt := c.t[i] - c.t[i-1]
	switch node {
	case i - 1:
		return c.t[i-1] * (c.t[i] - t) / dt
	case i:
		return c.t[i] * (t - c.t[i-1]) / dt
	default:
		return 0
	}
}

// withRate returns an independent copy with node i's rate replaced.
func (c *ZeroCurve) withRate(i int, rate float64) ZeroCurve {
	if i < 0 || i >= len(c.t) {
		panic(fmt.Sprintf("curve: node %d out of range [0,%d)", i, len(c.t)))
	}
	out := ZeroCurve{
		t:  c.t,
		r:  append([]float64(nil), c.r...),
		rt: append([]float64(nil), c.rt...),
	}
	out.r[i] = rate
	out.rt[i] = rate * c.t[i]
	return out
}

// YieldCurve is a discount curve: df(t) = exp(-r(t)*t).
type YieldCurve struct {
	ZeroCurve
}

// NewYieldCurve builds a yield curve from (time, zero rate) nodes.
func NewYieldCurve(times, rates []float64) (*YieldCurve, error) {
	c, err := newZeroCurve(times, rates)
	if err != nil {
		return nil, err
	}
	return &YieldCurve{c}, nil
}

// DiscountFactor returns the discount factor at time t.
func (y *YieldCurve) DiscountFactor(t float64) float64 {
	return math.Exp(-y.RT(t))
}

// ZeroRate returns the continuously compounded zero rate at time t.
func (y *YieldCurve) ZeroRate(t float64) float64 {
	if t == 0 {
		return y.r[0]
	}
	return y.RT(t) / t
}

// WithRate returns an independent copy with node i's zero rate replaced.
func (y *YieldCurve) WithRate(i int, rate float64) *YieldCurve {
	return &YieldCurve{y.withRate(i, rate)}
}

// CreditCurve is a survival curve: Q(t) = exp(-h(t)*t) where h is the
// zero-hazard rate implied by the calibrated nodes.
type CreditCurve struct {
	ZeroCurve
}

// NewCreditCurve builds a credit curve from (time, zero hazard rate) nodes.
func NewCreditCurve(times, rates []float64) (*CreditCurve, error) {
	c, err := newZeroCurve(times, rates)
	if err != nil {
		return nil, err
	}
	return &CreditCurve{c}, nil
}

// SurvivalProbability returns the survival probability at time t.
func (c *CreditCurve) SurvivalProbability(t float64) float64 {
	return math.Exp(-c.RT(t))
}

// ForwardHazardRate returns the constant hazard rate on the segment ending at
// node i (starting at node i-1, or at time zero for i = 0).
func (c *CreditCurve) ForwardHazardRate(i int) float64 {
	if i == 0 {
		return c.r[0]
	}
	return (c.rt[i] - c.rt[i-1]) / (c.t[i] - c.t[i-1])
}

// WithRate returns an independent copy with node i's zero hazard rate
// replaced. The original is untouched.
func (c *CreditCurve) WithRate(i int, rate float64) *CreditCurve {
	return &CreditCurve{c.withRate(i, rate)}
}

// SingleNodeDiscountFactorSensitivity returns d(exp(-RT(t)))/d(rate of node),
// the survival-probability sensitivity used by the analytic Jacobian.
func (c *CreditCurve) SingleNodeDiscountFactorSensitivity(t float64, node int) float64 {
	s := c.SingleNodeRTSensitivity(t, node)
	if s == 0 {
		return 0
	}
	return -s * math.Exp(-c.RT(t))
}
