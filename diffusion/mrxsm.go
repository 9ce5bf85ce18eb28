package diffusion

import (
	"fmt"
	"math/rand"
)

// MRXSM sandwiches the value-dependent shift-xor between two
// independent multiplications: x*m1; x ^= x>>(s1+(x>>s2)); x*m2.
type MRXSM struct {
	M1, M2 uint64
	S1, S2 uint32
}

// NewMRXSM clamps (s1,s2) per §4.1.
func NewMRXSM(m1, m2 uint64, s1, s2 uint32) MRXSM {
	s1, s2 = clampS1S2(s1, s2)
	return MRXSM{M1: m1, M2: m2, S1: s1, S2: s2}
}

// RandomMRXSM draws a uniformly random parameterisation.
func RandomMRXSM(rng *rand.Rand) MRXSM {
	m1 := randomOddU64(rng)
	m2 := randomOddU64(rng)
	s1, s2 := randomShiftPair(rng)
	return NewMRXSM(m1, m2, s1, s2)
}

// Diffuse implements Variant.
func (v MRXSM) Diffuse(x uint64) uint64 {
	x *= v.M1
	s := v.S1 + uint32(x>>v.S2)
	x ^= x >> s
	x *= v.M2
	return x
}

// Crossover implements Variant.
func (v MRXSM) Crossover(other Variant, rng *rand.Rand) [2]Variant {
	o := other.(MRXSM)
	m1s := crossoverMultiplier(v.M1, o.M1, rng)
	m2s := crossoverMultiplier(v.M2, o.M2, rng)
	var out [2]Variant
	for i := range out {
		s1 := crossoverS1(v.S1, o.S1, rng)
		s2 := crossoverS2(v.S2, o.S2, rng)
		m1 := mutateOddMultiplier(m1s[i], rng)
		m2 := mutateOddMultiplier(m2s[i], rng)
		out[i] = NewMRXSM(m1, m2, s1, s2)
	}
	return out
}

func (v MRXSM) String() string {
	return fmt.Sprintf("MRXSM{m1:%#x, m2:%#x, s1:%d, s2:%d}", v.M1, v.M2, v.S1, v.S2)
}
