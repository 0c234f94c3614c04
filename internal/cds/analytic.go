// Package cds implements the analytic CDS descriptor and the ISDA
// standard-model pricer.
//
// An Analytic is an immutable, date-free view of a single CDS: every contract
// date has been converted to a curve time (ACT/365F from the trade date) and
// every accrual period to a precomputed coupon. It is shared read-only
// between calibration and pricing.
package cds

import (
	"time"

	"github.com/rzzdr/credit-analytics/internal/schedule"
	"github.com/rzzdr/credit-analytics/pkg/utils/errors"
)

// Terms describes a CDS contract before conversion to curve times.
type Terms struct {
	// TradeDate anchors all curve times.
	TradeDate time.Time
	// StepInDate is when protection begins for a new buyer (usually T+1).
	StepInDate time.Time
	// CashSettleDate is when the upfront is exchanged (usually T+3 business).
	CashSettleDate time.Time
	// AccStartDate is the start of premium accrual (usually the prior IMM roll).
	AccStartDate time.Time
	// Maturity is the unadjusted protection end date.
	Maturity time.Time

	PaymentIntervalMonths    int
	Stub                     schedule.StubType
	PayAccOnDefault          bool
	ProtectionFromStartOfDay bool
	RecoveryRate             float64
	AccrualDayCount          schedule.DayCount
	CurveDayCount            schedule.DayCount
}

// StandardTerms returns the standard contract conventions for a trade date:
// step-in T+1 calendar, cash settlement T+3 business days, accrual from the
// IMM roll preceding step-in, quarterly payments with a short front stub,
// accrual paid on default, protection from start of day, ACT/360 accrual on
// an ACT/365F curve axis.
func StandardTerms(tradeDate, maturity time.Time, recoveryRate float64) Terms {
	stepIn := tradeDate.AddDate(0, 0, 1)
	cashSettle := tradeDate
	for i := 0; i < 3; i++ {
		cashSettle = schedule.AdjustFollowing(cashSettle.AddDate(0, 0, 1))
	}
	return Terms{
		TradeDate:                tradeDate,
		StepInDate:               stepIn,
		CashSettleDate:           cashSettle,
		AccStartDate:             schedule.AdjustFollowing(schedule.PrevIMM(stepIn)),
		Maturity:                 maturity,
		PaymentIntervalMonths:    3,
		Stub:                     schedule.FrontShort,
		PayAccOnDefault:          true,
		ProtectionFromStartOfDay: true,
		RecoveryRate:             recoveryRate,
		AccrualDayCount:          schedule.Act360,
		CurveDayCount:            schedule.Act365F,
	}
}

// Coupon is one precomputed premium accrual period.
type Coupon struct {
	// EffStart and EffEnd are the curve times bounding default observation
	// for this period (shifted back a day under protection-from-start-of-day).
	// EffStart can be negative for a seasoned trade.
	EffStart float64
	EffEnd   float64
	// PaymentTime is the curve time of the premium payment.
	PaymentTime float64
	// YearFrac is the accrual fraction in the accrual day count.
	YearFrac float64
	// YFRatio converts curve-time intervals back to accrual fractions for the
	// accrual-on-default integral.
	YFRatio float64
}

// Analytic is the immutable analytic description of a single CDS.
type Analytic struct {
	maturity        time.Time
	protectionStart float64
	protectionEnd   float64
	valuationTime   float64
	accruedYearFrac float64
	accruedDays     int
	lgd             float64
	payAccOnDefault bool
	coupons         []Coupon
}

// New builds the analytic descriptor from contract terms.
func New(terms Terms) (*Analytic, error) {
	if terms.RecoveryRate < 0 || terms.RecoveryRate > 1 {
		return nil, errors.InvalidArgumentf("cds: recovery rate %g outside [0,1]", terms.RecoveryRate)
	}
	if terms.StepInDate.Before(terms.TradeDate) {
		return nil, errors.InvalidArgument("cds: step-in date before trade date")
	}
	if terms.CashSettleDate.Before(terms.TradeDate) {
		return nil, errors.InvalidArgument("cds: cash-settle date before trade date")
	}
	if terms.PaymentIntervalMonths <= 0 {
		return nil, errors.InvalidArgumentf("cds: payment interval %dM must be positive", terms.PaymentIntervalMonths)
	}

	curveDCC := terms.CurveDayCount
	a := &Analytic{
		maturity:        terms.Maturity,
		lgd:             1 - terms.RecoveryRate,
		payAccOnDefault: terms.PayAccOnDefault,
		protectionEnd:   curveDCC.YearFraction(terms.TradeDate, terms.Maturity),
		valuationTime:   curveDCC.YearFraction(terms.TradeDate, terms.CashSettleDate),
	}
	if a.protectionEnd <= 0 {
		// Expired trade: prices to exactly zero, no schedule needed.
		return a, nil
	}

	offsetDays := 0
	if terms.ProtectionFromStartOfDay {
		offsetDays = 1
	}

	protStartDate := terms.StepInDate
	if terms.AccStartDate.After(protStartDate) {
		protStartDate = terms.AccStartDate
	}
	protStartDate = protStartDate.AddDate(0, 0, -offsetDays)
	a.protectionStart = curveDCC.YearFraction(terms.TradeDate, protStartDate)
	if a.protectionStart < 0 {
		a.protectionStart = 0
	}

	periods, err := schedule.NewPremiumSchedule(terms.AccStartDate, terms.Maturity, terms.PaymentIntervalMonths, terms.Stub)
	if err != nil {
		return nil, err
	}

	accDCC := terms.AccrualDayCount
	for _, pd := range periods {
		if !pd.AccEnd.After(terms.StepInDate) {
			continue
		}
		obsStart := pd.AccStart.AddDate(0, 0, -offsetDays)
		obsEnd := pd.AccEnd.AddDate(0, 0, -offsetDays)
		yf := accDCC.YearFraction(pd.AccStart, pd.AccEnd)
		a.coupons = append(a.coupons, Coupon{
			EffStart:    curveDCC.YearFraction(terms.TradeDate, obsStart),
			EffEnd:      curveDCC.YearFraction(terms.TradeDate, obsEnd),
			PaymentTime: curveDCC.YearFraction(terms.TradeDate, pd.Pay),
			YearFrac:    yf,
			YFRatio:     yf / curveDCC.YearFraction(pd.AccStart, pd.AccEnd),
		})
		if len(a.coupons) == 1 && terms.StepInDate.After(pd.AccStart) {
			a.accruedYearFrac = accDCC.YearFraction(pd.AccStart, terms.StepInDate)
			a.accruedDays = schedule.DaysBetween(pd.AccStart, terms.StepInDate)
		}
	}
	if len(a.coupons) == 0 {
		return nil, errors.InvalidArgument("cds: no premium periods after step-in date")
	}
	return a, nil
}

// NewStandard builds a standard-convention CDS; see StandardTerms.
func NewStandard(tradeDate, maturity time.Time, recoveryRate float64) (*Analytic, error) {
	return New(StandardTerms(tradeDate, maturity, recoveryRate))
}

// Maturity returns the unadjusted maturity date.
func (a *Analytic) Maturity() time.Time { return a.maturity }

// ProtectionStart returns the effective protection start time (>= 0).
func (a *Analytic) ProtectionStart() float64 { return a.protectionStart }

// ProtectionEnd returns the protection end time. Non-positive means expired.
func (a *Analytic) ProtectionEnd() float64 { return a.protectionEnd }

// ValuationTime returns the cash-settlement time used to re-base PVs.
func (a *Analytic) ValuationTime() float64 { return a.valuationTime }

// AccruedYearFraction returns the premium accrued at step-in, per unit coupon.
func (a *Analytic) AccruedYearFraction() float64 { return a.accruedYearFrac }

// AccruedDays returns the accrued day count at step-in.
func (a *Analytic) AccruedDays() int { return a.accruedDays }

// LGD returns the loss given default (1 - recovery).
func (a *Analytic) LGD() float64 { return a.lgd }

// RecoveryRate returns the recovery rate.
func (a *Analytic) RecoveryRate() float64 { return 1 - a.lgd }

// PayAccOnDefault reports whether accrued premium is paid on default.
func (a *Analytic) PayAccOnDefault() bool { return a.payAccOnDefault }

// NumCoupons returns the number of remaining premium periods.
func (a *Analytic) NumCoupons() int { return len(a.coupons) }

// Coupons returns a copy of the premium periods.
func (a *Analytic) Coupons() []Coupon { return append([]Coupon(nil), a.coupons...) }
