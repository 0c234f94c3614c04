package calibration

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rzzdr/credit-analytics/internal/cds"
	"github.com/rzzdr/credit-analytics/internal/curve"
	"github.com/rzzdr/credit-analytics/pkg/utils/errors"
)

// CurveInput is one independent calibration problem, typically one reference
// entity on a given valuation date.
type CurveInput struct {
	Pillars    []*cds.Analytic
	ParSpreads []float64
	Yield      *curve.YieldCurve
}

// CalibrateAll calibrates independent credit curves concurrently, bounded by
// the builder's worker count. Each calibration is a pure function of its
// input, so the only shared state is the result map. The first failure
// cancels the remaining work and is returned with its curve key.
func (b *Builder) CalibrateAll(ctx context.Context, inputs map[string]CurveInput) (map[string]*curve.CreditCurve, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	var mu sync.Mutex
	out := make(map[string]*curve.CreditCurve, len(inputs))

	for key, in := range inputs {
		key, in := key, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cc, err := b.Calibrate(in.Pillars, in.ParSpreads, in.Yield)
			if err != nil {
				return errors.Wrapf(err, "curve %q", key)
			}
			mu.Lock()
			out[key] = cc
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
