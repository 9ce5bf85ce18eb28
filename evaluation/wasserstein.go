package evaluation

import "math"

// W1FromCounts computes the scaled 1-Wasserstein distance (§4.6)
// between the empirical distribution given by counts[0..=64] (summing
// to N) and Binom(64, ½), given the pre-scaled reference CDF for that
// same N (BinomCDFScaled64(N)):
//
//	W1 = (Σ|P_k - CDF_SCALED[k]|) / sqrt(N)
//
// where P_k is the empirical cumulative count up to k.
func W1FromCounts(counts [65]uint32, cdfScaled [65]float32) float32 {
	var d float32
	var pSum uint32
	n := 0
	for _, c := range counts {
		n += int(c)
	}
	for k := 0; k <= 64; k++ {
		pSum += counts[k]
		diff := float32(pSum) - cdfScaled[k]
		if diff < 0 {
			diff = -diff
		}
		d += diff
	}
	return d / float32(math.Sqrt(float64(n)))
}

// W1FromDistribution computes the (unscaled, not divided by sqrt(N))
// 1-Wasserstein distance between a normalised probability vector p and
// Binom(64, ½)'s PMF — used by tests and diagnostics that work with
// probabilities rather than raw counts.
func W1FromDistribution(p [65]float32) float32 {
	var d, t float32
	for i := 0; i <= 64; i++ {
		t = p[i] + t - BinomPMF64[i]
		if t < 0 {
			d += -t
		} else {
			d += t
		}
	}
	return d
}
