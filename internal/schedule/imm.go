package schedule

import (
	"time"

	"github.com/rzzdr/credit-analytics/pkg/utils/errors"
)

// IMM dates are the 20th of March, June, September and December, the default
// CDS maturity and accrual anchors.

const immDay = 20

func isIMMMonth(m time.Month) bool {
	return m == time.March || m == time.June || m == time.September || m == time.December
}

// IsIMMDate reports whether d is a standard quarterly IMM date.
func IsIMMDate(d time.Time) bool {
	return d.Day() == immDay && isIMMMonth(d.Month())
}

// NextIMM returns the first IMM date strictly after d.
func NextIMM(d time.Time) time.Time {
	y, m := d.Year(), d.Month()
	for {
		if isIMMMonth(m) {
			imm := time.Date(y, m, immDay, 0, 0, 0, 0, time.UTC)
			if imm.After(d) {
				return imm
			}
		}
		if m == time.December {
			y, m = y+1, time.January
		} else {
			m++
		}
	}
}

// PrevIMM returns the last IMM date strictly before d.
func PrevIMM(d time.Time) time.Time {
	y, m := d.Year(), d.Month()
	for {
		if isIMMMonth(m) {
			imm := time.Date(y, m, immDay, 0, 0, 0, 0, time.UTC)
			if imm.Before(d) {
				return imm
			}
		}
		if m == time.January {
			y, m = y-1, time.December
		} else {
			m--
		}
	}
}

// IMMDateSet returns the IMM maturities obtained by stepping the given tenors
// (in whole months, multiples of three) out from an IMM anchor date.
func IMMDateSet(anchor time.Time, tenorMonths []int) ([]time.Time, error) {
	if !IsIMMDate(anchor) {
		return nil, errors.InvalidArgumentf("imm: anchor %s is not an IMM date", anchor.Format("2006-01-02"))
	}
	out := make([]time.Time, len(tenorMonths))
	for i, m := range tenorMonths {
		if m <= 0 || m%3 != 0 {
			return nil, errors.InvalidArgumentf("imm: tenor %dM is not a positive multiple of 3 months", m)
		}
		// Day 20 exists in every month, so no month-end normalization can occur.
		out[i] = anchor.AddDate(0, m, 0)
	}
	return out, nil
}
