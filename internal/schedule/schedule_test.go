package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rzzdr/credit-analytics/pkg/utils/errors"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestDayCountYearFraction(t *testing.T) {
	t.Parallel()

	start := d(2011, time.June, 20)
	end := d(2011, time.September, 20)

	require.InEpsilon(t, 92.0/360.0, Act360.YearFraction(start, end), 1e-15)
	require.InEpsilon(t, 92.0/365.0, Act365F.YearFraction(start, end), 1e-15)
	require.InEpsilon(t, 90.0/360.0, Thirty360.YearFraction(start, end), 1e-15)

	// Reversed dates are negative.
	require.InEpsilon(t, -92.0/360.0, Act360.YearFraction(end, start), 1e-15)
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	t.Parallel()

	a := time.Date(2011, time.June, 20, 23, 30, 0, 0, time.UTC)
	b := time.Date(2011, time.June, 21, 0, 15, 0, 0, time.UTC)
	require.Equal(t, 1, DaysBetween(a, b))
	require.Equal(t, 0, DaysBetween(a, a))
}

func TestIsIMMDate(t *testing.T) {
	t.Parallel()

	require.True(t, IsIMMDate(d(2011, time.June, 20)))
	require.True(t, IsIMMDate(d(2011, time.December, 20)))
	require.False(t, IsIMMDate(d(2011, time.June, 21)))
	require.False(t, IsIMMDate(d(2011, time.July, 20)))
}

func TestNextPrevIMM(t *testing.T) {
	t.Parallel()

	// Strictly after / strictly before, even from an IMM date itself.
	require.Equal(t, d(2011, time.September, 20), NextIMM(d(2011, time.June, 20)))
	require.Equal(t, d(2011, time.June, 20), NextIMM(d(2011, time.June, 13)))
	require.Equal(t, d(2012, time.March, 20), NextIMM(d(2011, time.December, 20)))

	require.Equal(t, d(2011, time.March, 20), PrevIMM(d(2011, time.June, 20)))
	require.Equal(t, d(2011, time.March, 20), PrevIMM(d(2011, time.June, 13)))
	require.Equal(t, d(2010, time.December, 20), PrevIMM(d(2011, time.March, 20)))
}

func TestIMMDateSet(t *testing.T) {
	t.Parallel()

	anchor := d(2011, time.June, 20)
	got, err := IMMDateSet(anchor, []int{6, 12, 36, 60, 84, 120})
	require.NoError(t, err)
	want := []time.Time{
		d(2011, time.December, 20),
		d(2012, time.June, 20),
		d(2014, time.June, 20),
		d(2016, time.June, 20),
		d(2018, time.June, 20),
		d(2021, time.June, 20),
	}
	require.Equal(t, want, got)

	_, err = IMMDateSet(d(2011, time.June, 13), []int{6})
	require.True(t, errors.IsInvalidArgument(err))

	_, err = IMMDateSet(anchor, []int{4})
	require.True(t, errors.IsInvalidArgument(err))
}

func TestAdjustFollowing(t *testing.T) {
	t.Parallel()

	// 2011-06-18 is a Saturday, 2011-06-19 a Sunday.
	require.Equal(t, d(2011, time.June, 20), AdjustFollowing(d(2011, time.June, 18)))
	require.Equal(t, d(2011, time.June, 20), AdjustFollowing(d(2011, time.June, 19)))
	require.Equal(t, d(2011, time.June, 20), AdjustFollowing(d(2011, time.June, 20)))
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	t.Parallel()

	require.Equal(t, d(2011, time.February, 28), AddMonths(d(2011, time.January, 31), 1))
	require.Equal(t, d(2012, time.February, 29), AddMonths(d(2012, time.January, 31), 1))
	require.Equal(t, d(2011, time.April, 30), AddMonths(d(2011, time.January, 30), 3))
	require.Equal(t, d(2011, time.September, 20), AddMonths(d(2011, time.June, 20), 3))
	require.Equal(t, d(2011, time.March, 20), AddMonths(d(2011, time.June, 20), -3))
}

func TestPremiumScheduleQuarterlyExactFit(t *testing.T) {
	t.Parallel()

	// Jun 20 to Dec 20 splits exactly into two quarters.
	periods, err := NewPremiumSchedule(d(2011, time.June, 20), d(2011, time.December, 20), 3, FrontShort)
	require.NoError(t, err)
	require.Len(t, periods, 2)

	require.Equal(t, d(2011, time.June, 20), periods[0].AccStart)
	require.Equal(t, d(2011, time.September, 20), periods[0].AccEnd)
	require.Equal(t, d(2011, time.September, 20), periods[0].Pay)

	require.Equal(t, d(2011, time.September, 20), periods[1].AccStart)
	// Final accrual runs through the maturity date itself.
	require.Equal(t, d(2011, time.December, 21), periods[1].AccEnd)
	require.Equal(t, d(2011, time.December, 20), periods[1].Pay)
}

func TestPremiumScheduleFrontShortStub(t *testing.T) {
	t.Parallel()

	// Accrual start mid-quarter: the stub sits at the front.
	periods, err := NewPremiumSchedule(d(2011, time.May, 10), d(2011, time.December, 20), 3, FrontShort)
	require.NoError(t, err)
	require.Len(t, periods, 3)

	require.Equal(t, d(2011, time.May, 10), periods[0].AccStart)
	require.Equal(t, d(2011, time.June, 20), periods[0].AccEnd)
	require.Equal(t, d(2011, time.September, 20), periods[1].AccEnd)
	require.Equal(t, d(2011, time.December, 21), periods[2].AccEnd)
}

func TestPremiumScheduleFrontLongStub(t *testing.T) {
	t.Parallel()

	periods, err := NewPremiumSchedule(d(2011, time.May, 10), d(2011, time.December, 20), 3, FrontLong)
	require.NoError(t, err)
	require.Len(t, periods, 2)

	require.Equal(t, d(2011, time.May, 10), periods[0].AccStart)
	require.Equal(t, d(2011, time.September, 20), periods[0].AccEnd)
	require.Equal(t, d(2011, time.December, 21), periods[1].AccEnd)
}

func TestPremiumScheduleBackStubs(t *testing.T) {
	t.Parallel()

	short, err := NewPremiumSchedule(d(2011, time.June, 20), d(2012, time.January, 15), 3, BackShort)
	require.NoError(t, err)
	require.Len(t, short, 3)
	require.Equal(t, d(2011, time.December, 20), short[2].AccStart)
	require.Equal(t, d(2012, time.January, 16), short[2].AccEnd)

	long, err := NewPremiumSchedule(d(2011, time.June, 20), d(2012, time.January, 15), 3, BackLong)
	require.NoError(t, err)
	require.Len(t, long, 2)
	require.Equal(t, d(2011, time.September, 20), long[1].AccStart)
	require.Equal(t, d(2012, time.January, 16), long[1].AccEnd)
}

func TestPremiumScheduleWeekendAdjustment(t *testing.T) {
	t.Parallel()

	// 2010-03-20 is a Saturday: the intermediate accrual boundary and its
	// payment date roll to Monday the 22nd.
	periods, err := NewPremiumSchedule(d(2009, time.December, 20), d(2010, time.June, 20), 3, FrontShort)
	require.NoError(t, err)
	require.Len(t, periods, 2)

	require.Equal(t, d(2010, time.March, 22), periods[0].AccEnd)
	require.Equal(t, d(2010, time.March, 22), periods[0].Pay)
	require.Equal(t, d(2010, time.March, 22), periods[1].AccStart)
	// 2010-06-20 is a Sunday: maturity pays Monday, accrual end stays at the
	// unadjusted maturity plus one day.
	require.Equal(t, d(2010, time.June, 21), periods[1].AccEnd)
	require.Equal(t, d(2010, time.June, 21), periods[1].Pay)
}

func TestPremiumScheduleValidation(t *testing.T) {
	t.Parallel()

	_, err := NewPremiumSchedule(d(2011, time.June, 20), d(2011, time.June, 20), 3, FrontShort)
	require.True(t, errors.IsInvalidArgument(err))

	_, err = NewPremiumSchedule(d(2011, time.June, 20), d(2011, time.December, 20), 0, FrontShort)
	require.True(t, errors.IsInvalidArgument(err))
}
