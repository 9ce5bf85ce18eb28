package evaluation

import (
	"math/bits"

	"github.com/VerKWer/diffusion/diffusion"
)

// Bitflips is the 64x65 avalanche histogram: Flips[b][k] is the count
// of samples for which flipping input bit b changes F's output by a
// value of Hamming weight k (§4.5).
type Bitflips struct {
	Flips [64][65]uint32
	N     int
}

// Measure computes the Bitflips table for variant v over samples.
func Measure(v diffusion.Variant, samples []uint64) Bitflips {
	var bf Bitflips
	bf.N = len(samples)
	for _, x := range samples {
		h := v.Diffuse(x)
		for b := 0; b < 64; b++ {
			d := h ^ v.Diffuse(x^(uint64(1)<<uint(b)))
			bf.Flips[b][bits.OnesCount64(d)]++
		}
	}
	return bf
}

// W1 returns the per-input-bit 1-Wasserstein distance to Binom(64, ½)
// for every row of the histogram (§4.6). cdfScaled must be
// BinomCDFScaled64(bf.N).
func (bf Bitflips) W1(cdfScaled [65]float32) [64]float32 {
	var out [64]float32
	for b := 0; b < 64; b++ {
		out[b] = W1FromCounts(bf.Flips[b], cdfScaled)
	}
	return out
}
