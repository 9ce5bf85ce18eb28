package diffusion

import (
	"fmt"
	"math/rand"
)

// MRXR multiplies, then rotate-xors by a shift that itself depends on
// the current value: x*m; x ^= rotr(x, s1+(x>>s2)).
type MRXR struct {
	M      uint64
	S1, S2 uint32
}

// NewMRXR clamps (s1,s2) per §4.1.
func NewMRXR(m uint64, s1, s2 uint32) MRXR {
	s1, s2 = clampS1S2(s1, s2)
	return MRXR{M: m, S1: s1, S2: s2}
}

// RandomMRXR draws a uniformly random parameterisation.
func RandomMRXR(rng *rand.Rand) MRXR {
	m := randomOddU64(rng)
	s1, s2 := randomShiftPair(rng)
	return NewMRXR(m, s1, s2)
}

// Diffuse implements Variant.
func (v MRXR) Diffuse(x uint64) uint64 {
	x *= v.M
	s := v.S1 + uint32(x>>v.S2)
	x ^= rotr64(x, uint(s))
	return x
}

// Crossover implements Variant.
func (v MRXR) Crossover(other Variant, rng *rand.Rand) [2]Variant {
	o := other.(MRXR)
	ms := crossoverMultiplier(v.M, o.M, rng)
	var out [2]Variant
	for i := range out {
		s1 := crossoverS1(v.S1, o.S1, rng)
		s2 := crossoverS2(v.S2, o.S2, rng)
		m := mutateOddMultiplier(ms[i], rng)
		out[i] = NewMRXR(m, s1, s2)
	}
	return out
}

func (v MRXR) String() string {
	return fmt.Sprintf("MRXR{m:%#x, s1:%d, s2:%d}", v.M, v.S1, v.S2)
}
