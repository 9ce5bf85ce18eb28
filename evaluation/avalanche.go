package evaluation

import (
	"math/rand"

	"github.com/VerKWer/diffusion/diffusion"
	"gonum.org/v1/gonum/stat"
)

// AvalancheDiagram is the diagnostic avalanche measurement described in
// §4.5's parenthetical: for each (input bit, output bit) pair, how many
// of N samples flip that output bit when the input bit is flipped.
// It is not consulted by Evaluator or the evolution loop — it exists
// purely for operator-facing diagnosis (the CLI's "diagnose"
// subcommand).
type AvalancheDiagram struct {
	Counts [64][64]uint32
	N      int
}

// MeasureAvalancheDiagram computes the diagram for variant f over n
// freshly drawn samples.
func MeasureAvalancheDiagram(f diffusion.Variant, n int, rng *rand.Rand) AvalancheDiagram {
	samples := make([]uint64, n)
	for i := range samples {
		samples[i] = rng.Uint64()
	}
	return avalancheDiagramOf(f, samples)
}

func avalancheDiagramOf(f diffusion.Variant, samples []uint64) AvalancheDiagram {
	var d AvalancheDiagram
	d.N = len(samples)
	for _, x := range samples {
		h := f.Diffuse(x)
		for inBit := 0; inBit < 64; inBit++ {
			flipped := h ^ f.Diffuse(x^(uint64(1)<<uint(inBit)))
			for outBit := 0; outBit < 64; outBit++ {
				if flipped&(uint64(1)<<uint(outBit)) != 0 {
					d.Counts[inBit][outBit]++
				}
			}
		}
	}
	return d
}

// SSE computes the sum over every cell of its squared error against
// the ideal N/2 flips, each divided by N/2, as in the source's
// `sse_reference`. Scenario #1:
// MRXSM(m1=m2=0x6eed0e9da4d94a4f, s1=32, s2=60), 1000 samples -> SSE
// in [1900, 2200].
func (d AvalancheDiagram) SSE() float64 {
	expected := float64(d.N) / 2
	var sse float64
	for i := 0; i < 64; i++ {
		for j := 0; j < 64; j++ {
			diff := float64(d.Counts[i][j]) - expected
			sse += diff * diff / expected
		}
	}
	return sse
}

// ResidualStats reports mean/variance of the per-cell deviation from
// N/2, using gonum's descriptive statistics — surfaced by the CLI's
// diagnose subcommand alongside the SSE scalar.
func (d AvalancheDiagram) ResidualStats() (mean, variance float64) {
	expected := float64(d.N) / 2
	residuals := make([]float64, 0, 64*64)
	for i := 0; i < 64; i++ {
		for j := 0; j < 64; j++ {
			residuals = append(residuals, float64(d.Counts[i][j])-expected)
		}
	}
	mean, variance = stat.MeanVariance(residuals, nil)
	return mean, variance
}
