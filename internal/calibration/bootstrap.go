// Package calibration implements the ISDA-compliant credit curve bootstrap.
package calibration

import (
	"math"
	"time"

	"github.com/rzzdr/credit-analytics/config"
	"github.com/rzzdr/credit-analytics/internal/cds"
	"github.com/rzzdr/credit-analytics/internal/curve"
	"github.com/rzzdr/credit-analytics/pkg/metrics"
	"github.com/rzzdr/credit-analytics/pkg/utils/errors"
	"github.com/rzzdr/credit-analytics/pkg/utils/logger"
	"github.com/rzzdr/credit-analytics/pkg/utils/solver"
)

// ArbitrageHandling selects what the bootstrap does when a solved node would
// imply a negative forward hazard rate (survival probability increasing with
// time) over the newest curve segment.
type ArbitrageHandling int

const (
	// ZeroHazardRate clamps the forward hazard rate on the offending segment
	// to zero, keeping survival flat. This is the default-safe policy.
	ZeroHazardRate ArbitrageHandling = iota
	// Ignore accepts the solved node as-is.
	Ignore
	// Fail aborts the calibration with an Arbitrage error.
	Fail
)

// String returns the policy name
func (a ArbitrageHandling) String() string {
	switch a {
	case ZeroHazardRate:
		return "zero_hazard_rate"
	case Ignore:
		return "ignore"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// ParseArbitrageHandling parses a policy name as used in configuration.
func ParseArbitrageHandling(s string) (ArbitrageHandling, error) {
	switch s {
	case "zero_hazard_rate":
		return ZeroHazardRate, nil
	case "ignore":
		return Ignore, nil
	case "fail":
		return Fail, nil
	default:
		return 0, errors.InvalidArgumentf("calibration: unknown arbitrage handling %q", s)
	}
}

// Node rate search limits for the bracket expansion. A zero-hazard curve sits
// at 0; 10 corresponds to survival of e^-10 per year, far beyond any market.
const (
	minNodeRate = -1.0
	maxNodeRate = 10.0
)

// Builder bootstraps a credit curve from CDS par spread quotes. It is
// stateless and side-effect-free: each Calibrate call is a pure function of
// its inputs.
type Builder struct {
	arb     ArbitrageHandling
	pricer  *cds.Pricer
	tol     float64
	maxIter int
	workers int
	log     *logger.Logger
	rec     *metrics.Recorder
}

// Option configures a Builder.
type Option func(*Builder)

// WithArbitrageHandling sets the arbitrage policy.
func WithArbitrageHandling(a ArbitrageHandling) Option {
	return func(b *Builder) { b.arb = a }
}

// WithPricer sets the pricing engine used inside the solve.
func WithPricer(p *cds.Pricer) Option {
	return func(b *Builder) { b.pricer = p }
}

// WithTolerance sets the absolute root accuracy per pillar.
func WithTolerance(tol float64) Option {
	return func(b *Builder) { b.tol = tol }
}

// WithMaxIterations sets the per-pillar iteration budget.
func WithMaxIterations(n int) Option {
	return func(b *Builder) { b.maxIter = n }
}

// WithWorkers bounds concurrency in CalibrateAll.
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// NewBuilder creates a bootstrap builder. Defaults: ZeroHazardRate policy,
// original-ISDA accrual-on-default pricer, 1e-12 tolerance, 100 iterations.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		arb:     ZeroHazardRate,
		pricer:  cds.NewPricer(cds.OriginalISDA),
		tol:     solver.DefaultTolerance,
		maxIter: solver.DefaultMaxIterations,
		workers: 4,
		log:     logger.GetLogger("calibration.bootstrap"),
		rec:     metrics.GetRecorder(),
	}
	for _, opt := range opts {
		opt(b)
	}
	// errgroup.SetLimit(0) would admit no goroutines and block CalibrateAll
	// forever, so a non-positive worker count falls back to the default.
	if b.workers <= 0 {
		b.workers = 4
	}
	return b
}

// NewBuilderFromConfig creates a builder from loaded configuration.
func NewBuilderFromConfig(cfg *config.Config) (*Builder, error) {
	arb, err := ParseArbitrageHandling(cfg.Calibration.ArbitrageHandling)
	if err != nil {
		return nil, err
	}
	formula := cds.OriginalISDA
	switch cfg.Calibration.AccrualOnDefaultFormula {
	case "original_isda", "":
	case "markit_fix":
		formula = cds.MarkitFix
	default:
		return nil, errors.InvalidArgumentf("calibration: unknown accrual-on-default formula %q", cfg.Calibration.AccrualOnDefaultFormula)
	}
	return NewBuilder(
		WithArbitrageHandling(arb),
		WithPricer(cds.NewPricer(formula)),
		WithTolerance(cfg.Solver.Tolerance),
		WithMaxIterations(cfg.Solver.MaxIterations),
		WithWorkers(cfg.Calibration.Workers),
	), nil
}

// Calibrate bootstraps a credit curve with one node per pillar such that each
// pillar CDS has zero clean PV at its quoted par spread. Pillars must be in
// strictly increasing maturity order. On any failure no partial curve is
// returned.
func (b *Builder) Calibrate(pillars []*cds.Analytic, parSpreads []float64, yc *curve.YieldCurve) (*curve.CreditCurve, error) {
	started := time.Now()
	cc, err := b.calibrate(pillars, parSpreads, yc)
	status := "ok"
	if err != nil {
		status = "error"
	}
	b.rec.RecordCalibration(status, len(pillars), time.Since(started))
	return cc, err
}

func (b *Builder) calibrate(pillars []*cds.Analytic, parSpreads []float64, yc *curve.YieldCurve) (*curve.CreditCurve, error) {
	n := len(pillars)
	if n == 0 {
		return nil, errors.InvalidArgument("calibration: no pillars")
	}
	if len(parSpreads) != n {
		return nil, errors.InvalidArgumentf("calibration: %d pillars but %d spreads", n, len(parSpreads))
	}
	if yc == nil {
		return nil, errors.InvalidArgument("calibration: nil yield curve")
	}

	times := make([]float64, n)
	guesses := make([]float64, n)
	for i, p := range pillars {
		t := p.ProtectionEnd()
		if t <= 0 {
			return nil, errors.InvalidArgumentf("calibration: pillar %d is expired", i)
		}
		if i > 0 && t <= times[i-1] {
			return nil, errors.InvalidArgumentf("calibration: pillar maturities not strictly increasing at index %d", i)
		}
		s := parSpreads[i]
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, errors.InvalidArgumentf("calibration: par spread %d is not finite", i)
		}
		times[i] = t
		if p.LGD() > 0 {
			guesses[i] = s / p.LGD()
		} else {
			guesses[i] = 0.01
		}
	}

	cc, err := curve.NewCreditCurve(times, guesses)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		pillar, spread, node := pillars[i], parSpreads[i], i
		f := func(h float64) float64 {
			trial := cc.WithRate(node, h)
			return b.pricer.ProtectionLeg(pillar, yc, trial) - spread*b.pricer.Annuity(pillar, yc, trial, cds.Clean)
		}
		df := func(h float64) float64 {
			trial := cc.WithRate(node, h)
			return b.pricer.PVCreditSensitivity(pillar, yc, trial, spread, node)
		}

		guess := guesses[i]
		lo, hi := 0.8*guess, 1.25*guess
		if guess <= 0 {
			lo, hi = guess-0.05, guess+0.05
		}
		blo, bhi, _, _, err := solver.Bracket(f, lo, hi, minNodeRate, maxNodeRate)
		if err != nil {
			return nil, errors.Wrapf(err, "calibration: pillar %d (spread %g) cannot be bracketed", i, spread)
		}
		root, iters, err := solver.NewtonSafe(f, df, blo, bhi, guess, b.tol, b.maxIter)
		if err != nil {
			return nil, errors.Wrapf(err, "calibration: pillar %d did not converge", i)
		}
		b.rec.RecordSolverIterations(iters)

		// The forward hazard on the new segment is negative iff the node rt
		// falls below the previous node's rt.
		minRate := 0.0
		if i > 0 {
			minRate = cc.Rate(i-1) * cc.Time(i-1) / cc.Time(i)
		}
		if root < minRate {
			switch b.arb {
			case Ignore:
				// Accept the inversion.
			case ZeroHazardRate:
				b.log.Debugw("clamping negative forward hazard to zero",
					"pillar", i, "root", root, "clamped", minRate)
				root = minRate
			case Fail:
				return nil, errors.Arbitrage("calibration: negative forward hazard rate implied by input quotes")
			}
		}
		cc = cc.WithRate(i, root)
	}
	return cc, nil
}
