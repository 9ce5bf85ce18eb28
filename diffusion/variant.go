package diffusion

import "math/rand"

// Variant is the shared contract of every diffusion function family:
// a pure bijective Word->Word map plus the genetic operators needed to
// evolve a population of its parameters.
type Variant interface {
	// Diffuse applies the function to x. Pure, total, deterministic.
	Diffuse(x uint64) uint64

	// Crossover recombines the receiver and other into two children,
	// consuming randomness from rng.
	Crossover(other Variant, rng *rand.Rand) [2]Variant

	// String returns a short stable textual form naming the tag and
	// its parameters.
	String() string
}

// Family identifies which of the five parameterised diffusion shapes
// a Variant value belongs to, for config parsing and display.
type Family string

const (
	FamilyMXR   Family = "mxr"
	FamilyMRXR  Family = "mrxr"
	FamilyMRXS  Family = "mrxs"
	FamilyRXSM  Family = "rxsm"
	FamilyMRXSM Family = "mrxsm"
)

// Random draws a uniformly random parameterisation of the given family.
func Random(family Family, rng *rand.Rand) Variant {
	switch family {
	case FamilyMXR:
		return RandomMXR(rng)
	case FamilyMRXR:
		return RandomMRXR(rng)
	case FamilyMRXS:
		return RandomMRXS(rng)
	case FamilyRXSM:
		return RandomRXSM(rng)
	case FamilyMRXSM:
		return RandomMRXSM(rng)
	default:
		panic("diffusion: unknown family " + string(family))
	}
}

// randomOddU64 draws a uniform random 64-bit value with its low bit
// forced set, so it is always odd (hence invertible mod 2^64 as a
// multiplier).
func randomOddU64(rng *rand.Rand) uint64 {
	return rng.Uint64() | 1
}

// randomShiftPair draws a valid (s1, s2) pair: s1 uniform in
// [0, S1MAX], s2 uniform in [MinS2(s1), 63].
func randomShiftPair(rng *rand.Rand) (uint32, uint32) {
	s1 := uint32(rng.Intn(S1MAX + 1))
	lo := MinS2(s1)
	s2 := lo + uint32(rng.Intn(64-int(lo)))
	return s1, s2
}

// sortPair returns (a, b) in ascending order.
func sortPair(a, b uint32) (uint32, uint32) {
	if a > b {
		return b, a
	}
	return a, b
}

// crossoverS1 implements §4.3's shift-parameter crossover for a
// single shift field taken pairwise from two parents: sample uniformly
// in [a,b]. It does not clamp; the §4.1 clamp is applied by each
// family's constructor.
func crossoverS1(a, b uint32, rng *rand.Rand) uint32 {
	lo, hi := sortPair(a, b)
	return lo + uint32(rng.Intn(int(hi-lo)+1))
}

// crossoverS2 implements the "expanded range" variant of shift
// crossover used for the second shift field: sample uniformly in
// [max(0, a-1), min(63, b+1)], with the a==0 underflow clamped
// explicitly (design decision D3).
func crossoverS2(a, b uint32, rng *rand.Rand) uint32 {
	lo, hi := sortPair(a, b)
	if lo == 0 {
		lo = 0
	} else {
		lo--
	}
	if hi < 63 {
		hi++
	} else {
		hi = 63
	}
	return lo + uint32(rng.Intn(int(hi-lo)+1))
}
