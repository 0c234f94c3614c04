package cds

import (
	"math"

	"github.com/rzzdr/credit-analytics/internal/curve"
	"github.com/rzzdr/credit-analytics/pkg/utils/mathutil"
)

// Analytic derivatives of the pricer's closed forms with respect to a single
// credit-curve node rate. Within each integration interval the leg value is a
// function of the survival probabilities q0, q1 at the interval ends; the
// chain rule goes through dq/dr via the curve's node sensitivity.

// PVCreditSensitivity returns d(PV)/d(credit node rate) for a buyer of
// protection paying the given coupon. Clean and dirty PVs have the same
// derivative: the accrued adjustment does not depend on the curve.
func (p *Pricer) PVCreditSensitivity(cds *Analytic, yc *curve.YieldCurve, cc *curve.CreditCurve, coupon float64, node int) float64 {
	if cds.protectionEnd <= 0 {
		return 0
	}
	return p.ProtectionLegCreditSensitivity(cds, yc, cc, node) -
		coupon*p.AnnuityCreditSensitivity(cds, yc, cc, node)
}

// ProtectionLegCreditSensitivity returns d(protection leg)/d(credit node rate).
func (p *Pricer) ProtectionLegCreditSensitivity(cds *Analytic, yc *curve.YieldCurve, cc *curve.CreditCurve, node int) float64 {
	if cds.protectionEnd <= 0 {
		return 0
	}
	knots := curve.IntegrationSchedule(cds.protectionStart, cds.protectionEnd, yc, cc)

	t := knots[0]
	ht0 := cc.RT(t)
	rt0 := yc.RT(t)
	q0 := math.Exp(-ht0)
	pd0 := math.Exp(-rt0)
	dqdr0 := cc.SingleNodeDiscountFactorSensitivity(t, node)
	sense := 0.0
	for _, t1 := range knots[1:] {
		ht1 := cc.RT(t1)
		rt1 := yc.RT(t1)
		q1 := math.Exp(-ht1)
		pd1 := math.Exp(-rt1)
		dqdr1 := cc.SingleNodeDiscountFactorSensitivity(t1, node)

		if dqdr0 != 0 || dqdr1 != 0 {
			dht := ht1 - ht0
			drt := rt1 - rt0
			dhrt := dht + drt
			b0 := pd0 * q0
			b1 := pd1 * q1

			var dPVdq0, dPVdq1 float64
			if math.Abs(dhrt) < smallDecay {
				e := mathutil.Epsilon(-dhrt)
				eP := mathutil.EpsilonP(-dhrt)
				dPVdq0 = pd0 * ((1+dht)*e - dht*eP)
				dPVdq1 = -b0 / q1 * (e - dht*eP)
			} else {
				w := drt * (b0 - b1) / (dhrt * dhrt)
				dPVdq0 = w/q0 + dht/dhrt*pd0
				dPVdq1 = -w/q1 - dht/dhrt*pd1
			}
			sense += dPVdq0*dqdr0 + dPVdq1*dqdr1
		}
		ht0, rt0, q0, pd0, dqdr0 = ht1, rt1, q1, pd1, dqdr1
	}
	sense *= cds.lgd
	sense /= yc.DiscountFactor(cds.valuationTime)
	return sense
}

// AnnuityCreditSensitivity returns d(annuity)/d(credit node rate).
func (p *Pricer) AnnuityCreditSensitivity(cds *Analytic, yc *curve.YieldCurve, cc *curve.CreditCurve, node int) float64 {
	if cds.protectionEnd <= 0 {
		return 0
	}
	sense := 0.0
	for _, c := range cds.coupons {
		dqdr := cc.SingleNodeDiscountFactorSensitivity(c.EffEnd, node)
		if dqdr != 0 {
			sense += c.YearFrac * yc.DiscountFactor(c.PaymentTime) * dqdr
		}
	}
	if cds.payAccOnDefault {
		knots := curve.IntegrationSchedule(cds.protectionStart, cds.protectionEnd, yc, cc)
		for _, c := range cds.coupons {
			sense += p.accrualOnDefaultCreditSensitivity(c, cds.protectionStart, knots, yc, cc, node)
		}
	}
	sense /= yc.DiscountFactor(cds.valuationTime)
	return sense
}

func (p *Pricer) accrualOnDefaultCreditSensitivity(c Coupon, effStart float64, integration []float64, yc *curve.YieldCurve, cc *curve.CreditCurve, node int) float64 {
	start := math.Max(c.EffStart, effStart)
	if start >= c.EffEnd {
		return 0
	}
	knots := curve.TruncateSetInclusive(start, c.EffEnd, integration)

	t := knots[0]
	ht0 := cc.RT(t)
	rt0 := yc.RT(t)
	q0 := math.Exp(-ht0)
	pd0 := math.Exp(-rt0)
	dqdr0 := cc.SingleNodeDiscountFactorSensitivity(t, node)
	t0 := t - c.EffStart + p.omega
	sense := 0.0
	for _, t1 := range knots[1:] {
		ht1 := cc.RT(t1)
		rt1 := yc.RT(t1)
		q1 := math.Exp(-ht1)
		pd1 := math.Exp(-rt1)
		dqdr1 := cc.SingleNodeDiscountFactorSensitivity(t1, node)
		dt := t1 - t
		tau1 := t1 - c.EffStart + p.omega

		if dqdr0 != 0 || dqdr1 != 0 {
			dht := ht1 - ht0
			drt := rt1 - rt0
			dhrt := dht + drt
			b0 := pd0 * q0
			b1 := pd1 * q1

			var dPVdq0, dPVdq1 float64
			if p.formula == MarkitFix {
				if math.Abs(dhrt) < smallDecay {
					eP := mathutil.EpsilonP(-dhrt)
					ePP := mathutil.EpsilonPP(-dhrt)
					dPVdq0 = dt * pd0 * ((1+dht)*eP - dht*ePP)
					dPVdq1 = -dt * b0 / q1 * (eP - dht*ePP)
				} else {
					a := dht * dt / dhrt
					bb := (b0-b1)/dhrt - b1
					dadq0 := dt * drt / (q0 * dhrt * dhrt)
					dbdq0 := pd0/dhrt - (b0-b1)/(q0*dhrt*dhrt)
					dadq1 := -dt * drt / (q1 * dhrt * dhrt)
					dbdq1 := -pd1/dhrt + (b0-b1)/(q1*dhrt*dhrt) - pd1
					dPVdq0 = dadq0*bb + a*dbdq0
					dPVdq1 = dadq1*bb + a*dbdq1
				}
			} else {
				if math.Abs(dhrt) < smallDecay {
					e := mathutil.Epsilon(-dhrt)
					eP := mathutil.EpsilonP(-dhrt)
					ePP := mathutil.EpsilonPP(-dhrt)
					f := t0*e + dt*eP
					fP := t0*eP + dt*ePP
					dPVdq0 = pd0 * ((1+dht)*f - dht*fP)
					dPVdq1 = -b0 / q1 * (f - dht*fP)
				} else {
					a := dht / dhrt
					bb := t0*b0 - tau1*b1 + dt/dhrt*(b0-b1)
					dadq0 := drt / (q0 * dhrt * dhrt)
					dbdq0 := t0*pd0 + dt*(pd0/dhrt-(b0-b1)/(q0*dhrt*dhrt))
					dadq1 := -drt / (q1 * dhrt * dhrt)
					dbdq1 := -tau1*pd1 + dt*((b0-b1)/(q1*dhrt*dhrt)-pd1/dhrt)
					dPVdq0 = dadq0*bb + a*dbdq0
					dPVdq1 = dadq1*bb + a*dbdq1
				}
			}
			sense += dPVdq0*dqdr0 + dPVdq1*dqdr1
		}
		if p.formula != MarkitFix {
			t0 = tau1
		}
		t, ht0, rt0, q0, pd0, dqdr0 = t1, ht1, rt1, q1, pd1, dqdr1
	}
	return sense * c.YFRatio
}
