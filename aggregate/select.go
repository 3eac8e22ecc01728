package aggregate

import "math"

// Select returns the index of the highest total.
//
// The scan starts at -Inf and only moves on a strictly greater total, so the
// lowest index wins ties and all-zero totals select 0. NaN never compares
// greater and is never selected unless every total is NaN, in which case 0 is
// returned. An empty slice also returns 0.
func Select(totals []float64) int {
	best := 0
	bestScore := math.Inf(-1)
	for c, s := range totals {
		if s > bestScore {
			best = c
			bestScore = s
		}
	}
	return best
}
