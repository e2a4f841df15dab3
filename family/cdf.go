package family

import (
	"sort"
)

// cdfTol is the tolerance used when comparing cumulative probabilities.
const cdfTol = 1e-12

// CreateCDF converts a set of non-negative weights into a normalized
// probability slice and its cumulative distribution. The last CDF entry is
// exactly 1. Both slices are nil if the weights sum to zero.
func CreateCDF(weights []float64) (cdf, prob []float64) {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 || len(weights) == 0 {
		return nil, nil
	}

	prob = make([]float64, len(weights))
	cdf = make([]float64, len(weights))
	sum := 0.0
	for i, w := range weights {
		prob[i] = w / total
		sum += prob[i]
		cdf[i] = sum
	}
	cdf[len(cdf)-1] = 1
	return cdf, prob
}

// AdjustCDF removes entry idx from a CDF and its parallel probability slice
// and renormalizes the remaining probabilities so that they sum to one while
// keeping their ratios. Surviving entries keep their relative order. The
// returned slices share backing arrays with the inputs and are one entry
// shorter; both are empty if no probability mass remains.
func AdjustCDF(cdf, prob []float64, idx int) ([]float64, []float64) {
	removed := prob[idx]
	copy(prob[idx:], prob[idx+1:])
	prob = prob[:len(prob)-1]
	cdf = cdf[:len(cdf)-1]

	remaining := 1 - removed
	if len(prob) == 0 || remaining <= cdfTol {
		// Sum what is left directly: 1 - removed loses everything when the
		// removed entry held (nearly) all of the mass.
		remaining = 0
		for _, p := range prob {
			remaining += p
		}
		if remaining <= 0 {
			return cdf[:0], prob[:0]
		}
	}

	sum := 0.0
	for i := range prob {
		prob[i] /= remaining
		sum += prob[i]
		cdf[i] = sum
	}
	cdf[len(cdf)-1] = 1
	return cdf, prob
}

// IndexFromProb returns the index of the first CDF entry which is >= u,
// skipping entries which carry no probability mass of their own. It returns
// -1 if the CDF is empty.
func IndexFromProb(cdf []float64, u float64) int {
	n := len(cdf)
	if n == 0 {
		return -1
	}

	i := sort.SearchFloat64s(cdf, u)
	if i >= n {
		i = n - 1
	}

	// Equal neighbouring entries mean a zero-probability slot: move forward
	// to the slot which actually owns the mass.
	prev := 0.0
	if i > 0 {
		prev = cdf[i-1]
	}
	for i < n-1 && cdf[i]-prev <= cdfTol {
		prev = cdf[i]
		i++
	}
	// A trailing zero-mass slot can only be reached through rounding; walk
	// back to the last slot with mass.
	for i > 0 && cdf[i]-cdf[i-1] <= cdfTol {
		i--
	}
	return i
}
