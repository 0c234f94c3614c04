package cds

import (
	"math"
	"time"

	"github.com/rzzdr/credit-analytics/internal/curve"
	"github.com/rzzdr/credit-analytics/pkg/metrics"
	"github.com/rzzdr/credit-analytics/pkg/utils/errors"
	"github.com/rzzdr/credit-analytics/pkg/utils/logger"
	"github.com/rzzdr/credit-analytics/pkg/utils/mathutil"
)

// PriceType selects clean or dirty present values.
type PriceType int

const (
	// Dirty includes premium accrued since the last payment date.
	Dirty PriceType = iota
	// Clean excludes it.
	Clean
)

// AccrualOnDefaultFormula selects how the accrual-on-default integral treats
// the accrued time at default.
type AccrualOnDefaultFormula int

const (
	// OriginalISDA measures accrued time from the period start with a
	// half-day offset (the original ISDA C code behaviour).
	OriginalISDA AccrualOnDefaultFormula = iota
	// MarkitFix drops the offset and the period-start weighting.
	MarkitFix
)

// Below this combined decay over a sub-interval, the closed forms are 0/0 and
// the series expansions take over.
const smallDecay = 1e-5

// Pricer is the analytic CDS pricing engine. It is stateless apart from the
// formula choice and safe for concurrent use.
type Pricer struct {
	formula AccrualOnDefaultFormula
	omega   float64
	log     *logger.Logger
	rec     *metrics.Recorder
}

// NewPricer creates a pricer using the given accrual-on-default formula.
func NewPricer(formula AccrualOnDefaultFormula) *Pricer {
	omega := 0.0
	if formula == OriginalISDA {
		omega = 1.0 / 730
	}
	return &Pricer{
		formula: formula,
		omega:   omega,
		log:     logger.GetLogger("cds.pricer"),
		rec:     metrics.GetRecorder(),
	}
}

// PV returns the present value per unit notional to a buyer of protection
// paying the given coupon: protection leg minus premium leg, re-based to the
// cash-settlement date. At or after expiry the PV is exactly zero.
func (p *Pricer) PV(cds *Analytic, yc *curve.YieldCurve, cc *curve.CreditCurve, coupon float64, pt PriceType) float64 {
	start := time.Now()
	defer func() { p.rec.RecordPricing("pv", time.Since(start)) }()
	if cds.protectionEnd <= 0 {
		return 0
	}
	return p.ProtectionLeg(cds, yc, cc) - coupon*p.Annuity(cds, yc, cc, pt)
}

// ParSpread returns the coupon that zeroes the clean PV.
func (p *Pricer) ParSpread(cds *Analytic, yc *curve.YieldCurve, cc *curve.CreditCurve) (float64, error) {
	start := time.Now()
	defer func() { p.rec.RecordPricing("par_spread", time.Since(start)) }()
	if cds.protectionEnd <= 0 {
		return 0, errors.InvalidArgument("cds: cannot compute par spread of an expired trade")
	}
	rpv01 := p.Annuity(cds, yc, cc, Clean)
	if rpv01 <= 0 {
		p.log.Warnw("non-positive risky annuity", "rpv01", rpv01, "maturity", cds.maturity)
		return 0, errors.Internal("cds: non-positive risky annuity")
	}
	return p.ProtectionLeg(cds, yc, cc) / rpv01, nil
}

// RPV01 returns the risky annuity: the premium leg PV per unit coupon.
func (p *Pricer) RPV01(cds *Analytic, yc *curve.YieldCurve, cc *curve.CreditCurve, pt PriceType) float64 {
	start := time.Now()
	defer func() { p.rec.RecordPricing("rpv01", time.Since(start)) }()
	return p.Annuity(cds, yc, cc, pt)
}

// ProtectionLeg values the protection leg per unit notional: the integral of
// LGD * (-dQ) * P over the protection window, evaluated in closed form on
// each interval where both curves are log-linear.
func (p *Pricer) ProtectionLeg(cds *Analytic, yc *curve.YieldCurve, cc *curve.CreditCurve) float64 {
	if cds.protectionEnd <= 0 {
		return 0
	}
	knots := curve.IntegrationSchedule(cds.protectionStart, cds.protectionEnd, yc, cc)

	ht0 := cc.RT(knots[0])
	rt0 := yc.RT(knots[0])
	b0 := math.Exp(-ht0 - rt0)
	pv := 0.0
	for _, t := range knots[1:] {
		ht1 := cc.RT(t)
		rt1 := yc.RT(t)
		b1 := math.Exp(-ht1 - rt1)
		dht := ht1 - ht0
		drt := rt1 - rt0
		dhrt := dht + drt

		var dPV float64
		if math.Abs(dhrt) < smallDecay {
			dPV = dht * b0 * mathutil.Epsilon(-dhrt)
		} else {
			dPV = (b0 - b1) * dht / dhrt
		}
		pv += dPV
		ht0, rt0, b0 = ht1, rt1, b1
	}
	pv *= cds.lgd
	pv /= yc.DiscountFactor(cds.valuationTime)
	return pv
}

// Annuity values the premium leg per unit coupon: each period's accrual
// fraction discounted and survival-weighted at period end, plus the
// accrual-on-default integral when the contract pays accrued on default.
func (p *Pricer) Annuity(cds *Analytic, yc *curve.YieldCurve, cc *curve.CreditCurve, pt PriceType) float64 {
	if cds.protectionEnd <= 0 {
		return 0
	}
	pv := 0.0
	for _, c := range cds.coupons {
		pv += c.YearFrac * yc.DiscountFactor(c.PaymentTime) * cc.SurvivalProbability(c.EffEnd)
	}
	if cds.payAccOnDefault {
		knots := curve.IntegrationSchedule(cds.protectionStart, cds.protectionEnd, yc, cc)
		for _, c := range cds.coupons {
			pv += p.accrualOnDefault(c, cds.protectionStart, knots, yc, cc)
		}
	}
	pv /= yc.DiscountFactor(cds.valuationTime)
	if pt == Clean {
		pv -= cds.accruedYearFrac
	}
	return pv
}

// accrualOnDefault is the closed-form integral of the accrued premium paid at
// default over one accrual period.
func (p *Pricer) accrualOnDefault(c Coupon, effStart float64, integration []float64, yc *curve.YieldCurve, cc *curve.CreditCurve) float64 {
	start := math.Max(c.EffStart, effStart)
	if start >= c.EffEnd {
		return 0
	}
	knots := curve.TruncateSetInclusive(start, c.EffEnd, integration)

	t := knots[0]
	ht0 := cc.RT(t)
	rt0 := yc.RT(t)
	b0 := math.Exp(-ht0 - rt0)
	t0 := t - c.EffStart + p.omega
	pv := 0.0
	for _, t1 := range knots[1:] {
		ht1 := cc.RT(t1)
		rt1 := yc.RT(t1)
		b1 := math.Exp(-ht1 - rt1)
		dt := t1 - t
		dht := ht1 - ht0
		drt := rt1 - rt0
		dhrt := dht + drt

		var tPV float64
		if p.formula == MarkitFix {
			if math.Abs(dhrt) < smallDecay {
				tPV = dht * dt * b0 * mathutil.EpsilonP(-dhrt)
			} else {
				tPV = dht * dt / dhrt * ((b0-b1)/dhrt - b1)
			}
		} else {
			tau1 := t1 - c.EffStart + p.omega
			if math.Abs(dhrt) < smallDecay {
				tPV = dht * b0 * (t0*mathutil.Epsilon(-dhrt) + dt*mathutil.EpsilonP(-dhrt))
			} else {
				tPV = dht / dhrt * (t0*b0 - tau1*b1 + dt/dhrt*(b0-b1))
			}
			t0 = tau1
		}
		pv += tPV
		t, ht0, rt0, b0 = t1, ht1, rt1, b1
	}
	return pv * c.YFRatio
}
