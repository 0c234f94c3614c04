// Package solver provides 1-D root finding for the curve bootstrap.
package solver

import (
	"math"

	"github.com/rzzdr/credit-analytics/pkg/utils/errors"
)

const (
	// DefaultTolerance is the default absolute accuracy on the root.
	DefaultTolerance = 1e-12
	// DefaultMaxIterations bounds a single Newton/bisection solve.
	DefaultMaxIterations = 100
	// maxBracketSteps bounds the bracket expansion search.
	maxBracketSteps = 50
)

// Bracket expands the interval [lo, hi] geometrically until f changes sign
// across it, keeping the interval inside [minLimit, maxLimit]. It returns the
// bracketing interval and the function values at its ends.
func Bracket(f func(float64) float64, lo, hi, minLimit, maxLimit float64) (a, b, fa, fb float64, err error) {
	if lo >= hi {
		return 0, 0, 0, 0, errors.InvalidArgumentf("bracket: lo (%g) must be below hi (%g)", lo, hi)
	}
	a, b = math.Max(lo, minLimit), math.Min(hi, maxLimit)
	fa, fb = f(a), f(b)

	const ratio = 1.6
	for i := 0; i < maxBracketSteps; i++ {
		if fa*fb <= 0 {
			return a, b, fa, fb, nil
		}
		// Expand the end with the smaller |f|, clamped to the limits.
		if math.Abs(fa) < math.Abs(fb) {
			a = math.Max(minLimit, a-ratio*(b-a))
			fa = f(a)
		} else {
			b = math.Min(maxLimit, b+ratio*(b-a))
			fb = f(b)
		}
		if a == minLimit && b == maxLimit && fa*fb > 0 {
			break
		}
	}
	return 0, 0, 0, 0, errors.NonConvergence("bracket: no sign change found within limits")
}

// NewtonSafe finds a root of f inside the bracketing interval [a, b] using
// Newton-Raphson steps guarded by bisection: whenever a Newton step would
// leave the current bracket, or would not halve it, a bisection step is taken
// instead. df is the analytic derivative of f; if nil, a forward-difference
// derivative is used. The iteration count is fixed; exhausting it is a
// deterministic NonConvergence error, never an infinite loop.
func NewtonSafe(f, df func(float64) float64, a, b, guess, tol float64, maxIter int) (float64, int, error) {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, 0, nil
	}
	if fb == 0 {
		return b, 0, nil
	}
	if fa*fb > 0 {
		return 0, 0, errors.InvalidArgument("newton: interval does not bracket a root")
	}
	// Orient so that f(lo) < 0 < f(hi).
	lo, hi := a, b
	if fa > 0 {
		lo, hi = b, a
	}

	x := guess
	if x < math.Min(a, b) || x > math.Max(a, b) {
		x = 0.5 * (a + b)
	}
	deriv := df
	if deriv == nil {
		deriv = func(y float64) float64 {
			h := 1e-7 * (math.Abs(y) + 1e-7)
			return (f(y+h) - f(y)) / h
		}
	}

	dxOld := math.Abs(b - a)
	dx := dxOld
	fx := f(x)
	dfx := deriv(x)
	for i := 1; i <= maxIter; i++ {
		// Newton step leaves the bracket iff (x' - lo)(x' - hi) > 0 for
		// x' = x - f/df; multiplying through by df^2 avoids the division.
		newtonOut := ((x-lo)*dfx-fx)*((x-hi)*dfx-fx) > 0
		tooSlow := math.Abs(2*fx) > math.Abs(dxOld*dfx)
		if newtonOut || tooSlow || dfx == 0 {
			dxOld = dx
			dx = 0.5 * (hi - lo)
			x = lo + dx
		} else {
			dxOld = dx
			dx = fx / dfx
			x -= dx
		}
		if math.Abs(dx) < tol {
			return x, i, nil
		}
		fx = f(x)
		dfx = deriv(x)
		if fx < 0 {
			lo = x
		} else {
			hi = x
		}
	}
	return 0, maxIter, errors.NonConvergence("newton: iteration budget exhausted")
}
