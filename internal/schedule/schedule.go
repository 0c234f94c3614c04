package schedule

import (
	"time"

	"github.com/rzzdr/credit-analytics/pkg/utils/errors"
)

// StubType selects how a period remainder shorter than the payment interval
// is placed in the schedule.
type StubType int

const (
	// FrontShort places a short first period (the CDS standard).
	FrontShort StubType = iota
	// FrontLong merges the remainder into a long first period.
	FrontLong
	// BackShort places a short final period.
	BackShort
	// BackLong merges the remainder into a long final period.
	BackLong
)

// String returns the convention name
func (s StubType) String() string {
	switch s {
	case FrontShort:
		return "FRONTSHORT"
	case FrontLong:
		return "FRONTLONG"
	case BackShort:
		return "BACKSHORT"
	case BackLong:
		return "BACKLONG"
	default:
		return "UNKNOWN"
	}
}

// Period is one premium accrual period. AccStart and AccEnd bound the
// accrual; Pay is the (business-day adjusted) payment date.
type Period struct {
	AccStart time.Time
	AccEnd   time.Time
	Pay      time.Time
}

// AdjustFollowing rolls a weekend date forward to the next weekday. The ISDA
// standard model uses the weekend-only calendar; holiday calendars are a
// caller concern.
func AdjustFollowing(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	default:
		return d
	}
}

// AddMonths behaves like Excel's EDATE: the result lands on the same day of
// month, clamped to the last day when the target month is shorter. Go's
// AddDate would normalize Jan 31 + 1M to Mar 3 instead.
func AddMonths(t time.Time, months int) time.Time {
	d := t.AddDate(0, months, 0)
	if d.Day() == t.Day() {
		return d
	}
	origMonth := d.Month()
	for d.Month() == origMonth {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// NewPremiumSchedule generates the accrual periods of a CDS premium leg from
// the unadjusted accrual start to the unadjusted maturity, stepping by the
// payment interval with the given stub handling.
//
// All intermediate dates are adjusted with the Following convention on the
// weekend calendar. The final accrual period ends one calendar day after the
// unadjusted maturity: the standard contract accrues through the maturity
// date itself.
func NewPremiumSchedule(accStart, maturity time.Time, intervalMonths int, stub StubType) ([]Period, error) {
	if !maturity.After(accStart) {
		return nil, errors.InvalidArgumentf("schedule: maturity %s not after accrual start %s",
			maturity.Format("2006-01-02"), accStart.Format("2006-01-02"))
	}
	if intervalMonths <= 0 {
		return nil, errors.InvalidArgumentf("schedule: payment interval %dM must be positive", intervalMonths)
	}

	dates, err := unadjustedDates(accStart, maturity, intervalMonths, stub)
	if err != nil {
		return nil, err
	}

	n := len(dates) - 1
	periods := make([]Period, n)
	for i := 0; i < n; i++ {
		start := AdjustFollowing(dates[i])
		end := AdjustFollowing(dates[i+1])
		pay := end
		if i == n-1 {
			// Final period: unadjusted maturity plus the extra accrued day.
			end = dates[n].AddDate(0, 0, 1)
			pay = AdjustFollowing(dates[n])
		}
		periods[i] = Period{AccStart: start, AccEnd: end, Pay: pay}
	}
	return periods, nil
}

func unadjustedDates(accStart, maturity time.Time, intervalMonths int, stub StubType) ([]time.Time, error) {
	switch stub {
	case FrontShort, FrontLong:
		// Roll backwards from maturity.
		var back []time.Time
		for k := 0; ; k++ {
			d := AddMonths(maturity, -k*intervalMonths)
			if !d.After(accStart) {
				break
			}
			back = append(back, d)
		}
		n := len(back)
		dates := make([]time.Time, n)
		for i, d := range back {
			dates[n-1-i] = d
		}
		if AddMonths(dates[0], -intervalMonths).Equal(accStart) {
			return append([]time.Time{accStart}, dates...), nil
		}
		if stub == FrontLong && n > 1 {
			// Merge the stub into the first regular period.
			dates = dates[1:]
		}
		return append([]time.Time{accStart}, dates...), nil

	case BackShort, BackLong:
		// Roll forwards from the accrual start.
		dates := []time.Time{accStart}
		for k := 1; ; k++ {
			d := AddMonths(accStart, k*intervalMonths)
			if !d.Before(maturity) {
				if d.Equal(maturity) {
					dates = append(dates, d)
					return dates, nil
				}
				break
			}
			dates = append(dates, d)
		}
		if stub == BackLong && len(dates) > 1 {
			dates = dates[:len(dates)-1]
		}
		return append(dates, maturity), nil

	default:
		return nil, errors.InvalidArgumentf("schedule: unknown stub type %d", int(stub))
	}
}
