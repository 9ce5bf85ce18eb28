package diffusion

import (
	"fmt"
	"math/rand"
)

// RXSM is MRXS with the two stages reordered: the value-dependent
// shift-xor runs first, the multiply last: x ^= x>>(s1+(x>>s2)); x*m.
// (No reference source exists for this ordering; its shape follows by
// analogy with MRXS, with the stages reordered as named.)
type RXSM struct {
	M      uint64
	S1, S2 uint32
}

// NewRXSM clamps (s1,s2) per §4.1.
func NewRXSM(m uint64, s1, s2 uint32) RXSM {
	s1, s2 = clampS1S2(s1, s2)
	return RXSM{M: m, S1: s1, S2: s2}
}

// RandomRXSM draws a uniformly random parameterisation.
func RandomRXSM(rng *rand.Rand) RXSM {
	m := randomOddU64(rng)
	s1, s2 := randomShiftPair(rng)
	return NewRXSM(m, s1, s2)
}

// Diffuse implements Variant.
func (v RXSM) Diffuse(x uint64) uint64 {
	s := v.S1 + uint32(x>>v.S2)
	x ^= x >> s
	x *= v.M
	return x
}

// Crossover implements Variant.
func (v RXSM) Crossover(other Variant, rng *rand.Rand) [2]Variant {
	o := other.(RXSM)
	ms := crossoverMultiplier(v.M, o.M, rng)
	var out [2]Variant
	for i := range out {
		s1 := crossoverS1(v.S1, o.S1, rng)
		s2 := crossoverS2(v.S2, o.S2, rng)
		m := mutateOddMultiplier(ms[i], rng)
		out[i] = NewRXSM(m, s1, s2)
	}
	return out
}

func (v RXSM) String() string {
	return fmt.Sprintf("RXSM{m:%#x, s1:%d, s2:%d}", v.M, v.S1, v.S2)
}
