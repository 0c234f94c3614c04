package curve

import "sort"

// IntegrationSchedule returns the ordered set of times over [start, end] at
// which either curve has a node, with start and end always included. The
// closed-form leg integrals are exact only while both curves are log-linear,
// so every integration must break at the union of the two knot sets.
func IntegrationSchedule(start, end float64, yield *YieldCurve, credit *CreditCurve) []float64 {
	if end <= start {
		return []float64{start, end}
	}
	set := make([]float64, 0, yield.NumNodes()+credit.NumNodes()+2)
	set = append(set, start, end)
	for _, t := range yield.t {
		if t > start && t < end {
			set = append(set, t)
		}
	}
	for _, t := range credit.t {
		if t > start && t < end {
			set = append(set, t)
		}
	}
	sort.Float64s(set)
	return dedup(set)
}

// TruncateSetInclusive restricts an ordered set to [lo, hi], substituting lo
// and hi for the boundary entries.
func TruncateSetInclusive(lo, hi float64, set []float64) []float64 {
	if hi <= lo {
		return []float64{lo, hi}
	}
	out := make([]float64, 0, len(set)+2)
	out = append(out, lo)
	for _, t := range set {
		if t > lo && t < hi {
			out = append(out, t)
		}
	}
	out = append(out, hi)
	return dedup(out)
}

func dedup(sorted []float64) []float64 {
	out := sorted[:1]
	for _, t := range sorted[1:] {
		if t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}
