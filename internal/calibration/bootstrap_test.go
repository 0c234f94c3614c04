package calibration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rzzdr/credit-analytics/internal/cds"
	"github.com/rzzdr/credit-analytics/internal/curve"
	"github.com/rzzdr/credit-analytics/pkg/utils/errors"
)

var tradeDate = time.Date(2011, time.June, 13, 0, 0, 0, 0, time.UTC)

func testYieldCurve(t *testing.T) *curve.YieldCurve {
	t.Helper()
	yc, err := curve.NewYieldCurve(
		[]float64{0.25, 0.5, 1, 2, 3, 5, 7, 10, 15},
		[]float64{0.0045, 0.0065, 0.0090, 0.0125, 0.0155, 0.0205, 0.0240, 0.0270, 0.0290},
	)
	require.NoError(t, err)
	return yc
}

// standardPillars builds the quoted pillar CDSs off the IMM date set of the
// trade date.
func standardPillars(t *testing.T, tenorMonths []int) []*cds.Analytic {
	t.Helper()
	pillars := make([]*cds.Analytic, len(tenorMonths))
	anchor := time.Date(2011, time.June, 20, 0, 0, 0, 0, time.UTC)
	for i, m := range tenorMonths {
		maturity := anchor.AddDate(0, m, 0)
		p, err := cds.NewStandard(tradeDate, maturity, 0.4)
		require.NoError(t, err)
		pillars[i] = p
	}
	return pillars
}

func TestCalibrateRepricesPillars(t *testing.T) {
	t.Parallel()

	yc := testYieldCurve(t)
	pillars := standardPillars(t, []int{6, 12, 36, 60, 84, 120})
	spreads := []float64{0.008863, 0.008863, 0.013304, 0.017149, 0.018390, 0.019472}

	b := NewBuilder()
	cc, err := b.Calibrate(pillars, spreads, yc)
	require.NoError(t, err)

	pricer := cds.NewPricer(cds.OriginalISDA)
	for i, p := range pillars {
		pv := pricer.PV(p, yc, cc, spreads[i], cds.Clean)
		require.InDelta(t, 0.0, pv, 1e-10, "pillar %d", i)

		par, err := pricer.ParSpread(p, yc, cc)
		require.NoError(t, err)
		require.InDelta(t, spreads[i], par, 1e-10, "pillar %d", i)
	}
}

func TestCalibrateSurvivalDecreasing(t *testing.T) {
	t.Parallel()

	yc := testYieldCurve(t)
	pillars := standardPillars(t, []int{12, 36, 60, 120})
	// Steeply inverted quotes still yield a monotone survival curve under the
	// zero-hazard clamp.
	spreads := []float64{0.05, 0.02, 0.012, 0.008}

	cc, err := NewBuilder(WithArbitrageHandling(ZeroHazardRate)).Calibrate(pillars, spreads, yc)
	require.NoError(t, err)

	prev := 1.0
	for _, tt := range []float64{0.5, 1, 2, 3, 5, 7, 10} {
		q := cc.SurvivalProbability(tt)
		require.LessOrEqual(t, q, prev+1e-15, "t=%g", tt)
		require.Greater(t, q, 0.0)
		prev = q
	}
}

func TestCalibrateFailPolicy(t *testing.T) {
	t.Parallel()

	yc := testYieldCurve(t)
	pillars := standardPillars(t, []int{12, 60})
	spreads := []float64{0.05, 0.0001}

	_, err := NewBuilder(WithArbitrageHandling(Fail)).Calibrate(pillars, spreads, yc)
	require.Error(t, err)
	require.True(t, errors.IsArbitrage(err))

	// The same quotes calibrate under Ignore, with an inverted segment.
	cc, err := NewBuilder(WithArbitrageHandling(Ignore)).Calibrate(pillars, spreads, yc)
	require.NoError(t, err)
	require.Less(t, cc.ForwardHazardRate(1), 0.0)
}

func TestCalibrateMarkitFixPricer(t *testing.T) {
	t.Parallel()

	yc := testYieldCurve(t)
	pillars := standardPillars(t, []int{12, 60, 120})
	spreads := []float64{0.009, 0.015, 0.019}

	pricer := cds.NewPricer(cds.MarkitFix)
	cc, err := NewBuilder(WithPricer(pricer)).Calibrate(pillars, spreads, yc)
	require.NoError(t, err)
	for i, p := range pillars {
		require.InDelta(t, 0.0, pricer.PV(p, yc, cc, spreads[i], cds.Clean), 1e-10, "pillar %d", i)
	}
}

func TestCalibrateSinglePillar(t *testing.T) {
	t.Parallel()

	yc := testYieldCurve(t)
	pillars := standardPillars(t, []int{60})
	spreads := []float64{0.0125}

	cc, err := NewBuilder().Calibrate(pillars, spreads, yc)
	require.NoError(t, err)
	require.Equal(t, 1, cc.NumNodes())

	pricer := cds.NewPricer(cds.OriginalISDA)
	require.InDelta(t, 0.0, pricer.PV(pillars[0], yc, cc, spreads[0], cds.Clean), 1e-10)
}

func TestCalibratePreconditions(t *testing.T) {
	t.Parallel()

	yc := testYieldCurve(t)
	pillars := standardPillars(t, []int{12, 60})

	_, err := NewBuilder().Calibrate(nil, nil, yc)
	require.True(t, errors.IsInvalidArgument(err))

	_, err = NewBuilder().Calibrate(pillars, []float64{0.01}, yc)
	require.True(t, errors.IsInvalidArgument(err))

	_, err = NewBuilder().Calibrate(pillars, []float64{0.01, 0.02}, nil)
	require.True(t, errors.IsInvalidArgument(err))

	// Out-of-order pillars.
	reversed := []*cds.Analytic{pillars[1], pillars[0]}
	_, err = NewBuilder().Calibrate(reversed, []float64{0.02, 0.01}, yc)
	require.True(t, errors.IsInvalidArgument(err))
}

func TestParseArbitrageHandling(t *testing.T) {
	t.Parallel()

	for _, a := range []ArbitrageHandling{ZeroHazardRate, Ignore, Fail} {
		got, err := ParseArbitrageHandling(a.String())
		require.NoError(t, err)
		require.Equal(t, a, got)
	}
	_, err := ParseArbitrageHandling("bogus")
	require.True(t, errors.IsInvalidArgument(err))
}

func TestCalibrateAll(t *testing.T) {
	t.Parallel()

	yc := testYieldCurve(t)
	tenors := []int{12, 36, 60, 120}
	pillars := standardPillars(t, tenors)

	inputs := map[string]CurveInput{
		"tight": {Pillars: pillars, ParSpreads: []float64{0.004, 0.005, 0.006, 0.007}, Yield: yc},
		"mid":   {Pillars: pillars, ParSpreads: []float64{0.009, 0.013, 0.017, 0.019}, Yield: yc},
		"wide":  {Pillars: pillars, ParSpreads: []float64{0.030, 0.040, 0.045, 0.050}, Yield: yc},
	}

	b := NewBuilder(WithWorkers(2))
	curves, err := b.CalibrateAll(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, curves, 3)

	// Concurrent results match the sequential path exactly.
	for key, in := range inputs {
		want, err := b.Calibrate(in.Pillars, in.ParSpreads, in.Yield)
		require.NoError(t, err)
		for i := 0; i < want.NumNodes(); i++ {
			require.Equal(t, want.Rate(i), curves[key].Rate(i), "curve %q node %d", key, i)
		}
	}
}

func TestCalibrateAllNonPositiveWorkers(t *testing.T) {
	t.Parallel()

	// A zero or negative worker count must not stall the group; it falls back
	// to the default concurrency bound.
	yc := testYieldCurve(t)
	pillars := standardPillars(t, []int{12, 60})
	inputs := map[string]CurveInput{
		"only": {Pillars: pillars, ParSpreads: []float64{0.01, 0.012}, Yield: yc},
	}

	for _, workers := range []int{0, -3} {
		curves, err := NewBuilder(WithWorkers(workers)).CalibrateAll(context.Background(), inputs)
		require.NoError(t, err, "workers=%d", workers)
		require.Len(t, curves, 1)
	}
}

func TestCalibrateAllPropagatesFailure(t *testing.T) {
	t.Parallel()

	yc := testYieldCurve(t)
	pillars := standardPillars(t, []int{12, 60})

	inputs := map[string]CurveInput{
		"good": {Pillars: pillars, ParSpreads: []float64{0.01, 0.012}, Yield: yc},
		"bad":  {Pillars: pillars, ParSpreads: []float64{0.01, 0.012}, Yield: nil},
	}
	_, err := NewBuilder().CalibrateAll(context.Background(), inputs)
	require.Error(t, err)
	require.Contains(t, err.Error(), `"bad"`)
}
