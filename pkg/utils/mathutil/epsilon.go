// Package mathutil provides scalar helpers for the closed-form leg integrals.
//
// The functions here are the (e^x - 1)/x family. The leg integration formulas
// divide by the combined discount-plus-hazard decay over a sub-interval; when
// that decay is near zero the quotient is a removable 0/0 singularity, and the
// caller switches to these series forms to avoid catastrophic cancellation.
package mathutil

import "math"

// Series cutoff. Below this the direct formulas lose roughly half the
// mantissa to cancellation while the cubic series is accurate to ~1e-21.
const seriesCutoff = 1e-10

// Epsilon returns (e^x - 1) / x, with Epsilon(0) = 1.
func Epsilon(x float64) float64 {
	if math.Abs(x) < seriesCutoff {
		return 1 + x*(0.5+x*(1.0/6.0+x/24.0))
	}
	return math.Expm1(x) / x
}

// EpsilonP returns the first derivative of Epsilon,
// (e^x*(x-1) + 1) / x^2, with EpsilonP(0) = 1/2.
func EpsilonP(x float64) float64 {
	if math.Abs(x) < 1e-5 {
		return 0.5 + x*(1.0/3.0+x*(0.125+x/30.0))
	}
	return (math.Exp(x)*(x-1) + 1) / (x * x)
}

// EpsilonPP returns the second derivative of Epsilon,
// (e^x*(x^2-2x+2) - 2) / x^3, with EpsilonPP(0) = 1/3.
func EpsilonPP(x float64) float64 {
	if math.Abs(x) < 1e-3 {
		return 1.0/3.0 + x*(0.25+x*(0.1+x/36.0))
	}
	return (math.Exp(x)*(x*x-2*x+2) - 2) / (x * x * x)
}
