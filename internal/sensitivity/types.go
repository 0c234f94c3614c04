// Package sensitivity implements CS01 calculators: the sensitivity of a CDS
// trade's PV to 1bp moves in the market par spreads, parallel and bucketed,
// by finite difference (bump and recalibrate) and analytically (Jacobian
// chain rule through the pricer). The two are cross-checks of each other.
package sensitivity

import (
	"time"

	"github.com/rzzdr/credit-analytics/internal/cds"
	"github.com/rzzdr/credit-analytics/pkg/utils/errors"
)

// OneBasisPoint scales spread sensitivities to basis-point units at the API
// boundary. Everything internal stays in decimal.
const OneBasisPoint = 1e-4

// Trade is a CDS position: single name, or an index position reduced to its
// single-name equivalent via the index factor.
type Trade struct {
	CDS      *cds.Analytic
	Coupon   float64
	Notional float64
	// IndexFactor is the remaining fraction of an index's original notional,
	// in (0, 1]. 1 for a single name.
	IndexFactor float64
}

// NewSingleName creates a single-name CDS trade.
func NewSingleName(c *cds.Analytic, coupon, notional float64) Trade {
	return Trade{CDS: c, Coupon: coupon, Notional: notional, IndexFactor: 1}
}

// NewIndex creates a CDS index trade with the given index factor.
func NewIndex(c *cds.Analytic, coupon, notional, indexFactor float64) Trade {
	return Trade{CDS: c, Coupon: coupon, Notional: notional, IndexFactor: indexFactor}
}

func (t Trade) validate() error {
	if t.CDS == nil {
		return errors.InvalidArgument("sensitivity: nil CDS")
	}
	if t.IndexFactor <= 0 || t.IndexFactor > 1 {
		return errors.InvalidArgumentf("sensitivity: index factor %g outside (0,1]", t.IndexFactor)
	}
	return nil
}

// BucketedCS01 is a named sensitivity vector over the calibration pillars.
type BucketedCS01 struct {
	Pillars []time.Time
	Values  []float64
}

// Total returns the sum over buckets.
func (b BucketedCS01) Total() float64 {
	total := 0.0
	for _, v := range b.Values {
		total += v
	}
	return total
}

func pillarDates(pillars []*cds.Analytic) []time.Time {
	out := make([]time.Time, len(pillars))
	for i, p := range pillars {
		out[i] = p.Maturity()
	}
	return out
}
