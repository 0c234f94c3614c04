// Package schedule provides the date arithmetic behind CDS accrual schedules:
// day-count conventions, IMM roll dates and premium-leg period generation.
package schedule

import "time"

// DayCount is a day-count convention for year-fraction conversion.
type DayCount int

const (
	// Act360 is ACT/360, the standard CDS accrual convention.
	Act360 DayCount = iota
	// Act365F is ACT/365 Fixed, the curve time-axis convention.
	Act365F
	// Thirty360 is 30E/360 (Eurobond basis).
	Thirty360
)

// String returns the market name of the convention
func (dc DayCount) String() string {
	switch dc {
	case Act360:
		return "ACT/360"
	case Act365F:
		return "ACT/365F"
	case Thirty360:
		return "30E/360"
	default:
		return "UNKNOWN"
	}
}

// YearFraction computes the year fraction between two dates under the
// convention. start after end yields a negative fraction.
func (dc DayCount) YearFraction(start, end time.Time) float64 {
	switch dc {
	case Act360:
		return float64(DaysBetween(start, end)) / 360.0
	case Act365F:
		return float64(DaysBetween(start, end)) / 365.0
	case Thirty360:
		d1 := start.Day()
		if d1 > 30 {
			d1 = 30
		}
		d2 := end.Day()
		if d2 > 30 {
			d2 = 30
		}
		y1, m1 := start.Year(), int(start.Month())
		y2, m2 := end.Year(), int(end.Month())
		return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
	default:
		return float64(DaysBetween(start, end)) / 365.0
	}
}

// DaysBetween returns the whole calendar days from start to end.
func DaysBetween(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}
