package core

import "sort"

// -----------------------------------------------------------------------------

// PercentileRanks computes the cross-sectional percentile rank of each value
// against all non-nil values: (fractional rank / count) * 100, with
// average-rank tie-breaking. Nil inputs yield nil outputs. A universe with no
// values yields all nil.
func PercentileRanks(values []*float64) []*float64 {
	out := make([]*float64, len(values))

	// Indices of present values
	var idx []int
	for i, v := range values {
		if v != nil {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return out
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return *values[idx[a]] < *values[idx[b]]
	})

	count := float64(len(idx))

	// Walk runs of equal values and assign the averaged rank to each member
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && *values[idx[j+1]] == *values[idx[i]] {
			j++
		}
		// Ranks are 1-based; the run spans ranks i+1..j+1
		avgRank := float64(i+1+j+1) / 2.0
		pct := avgRank / count * 100
		for k := i; k <= j; k++ {
			v := pct
			out[idx[k]] = &v
		}
		i = j + 1
	}

	return out
}
