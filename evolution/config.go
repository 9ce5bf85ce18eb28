// Package evolution implements the generational genetic-algorithm loop
// (elitism, tournament selection, reproduction, periodic sample
// refresh) over a fixed-size population of evaluated diffusion
// functions, along with its configuration and checkpoint format.
package evolution

import (
	"fmt"
	"math/bits"
)

// Config enumerates every recognised knob of the evolution loop (§6).
type Config struct {
	GenerationSize  int // G: population size per worker
	Elitism         int // E: elite count carried forward unchanged (even, 0<E<G)
	TournamentSize  int // T: candidates per tournament
	NSamples        int // N: samples per evaluation
	NRounds         int // R: subdivisions of samples (R divides N)
	SampleLifetime  int // L: generations between sample refreshes (power of two)
	CrossoverBits   int // B: width of the bit-mask crossover window (0<B<33)
	MutationOdds    int // O: inverse per-bit flip probability (O>=1)
	NGenerations    int // outer loop bound, consumed by the runner
}

// DefaultConfig returns the documented default parameters
// (G=512, E=50, T=4, L=8, N=1000, R=100, B=32, O=8).
func DefaultConfig() Config {
	return Config{
		GenerationSize: 512,
		Elitism:        50,
		TournamentSize: 4,
		NSamples:       1000,
		NRounds:        100,
		SampleLifetime: 8,
		CrossoverBits:  32,
		MutationOdds:   8,
		NGenerations:   1000,
	}
}

// DebugConfig returns the small-sized configuration referenced by §3
// and §4.9 for fast local iteration (G=32, R=1).
func DebugConfig() Config {
	c := DefaultConfig()
	c.GenerationSize = 32
	c.Elitism = 4
	c.NRounds = 1
	c.NGenerations = 20
	return c
}

// Validate checks every §6 invariant, returning a wrapped error naming
// the first violated one.
func (c Config) Validate() error {
	if c.GenerationSize <= 0 {
		return fmt.Errorf("%w: generation_size must be > 0, got %d", ErrInvalidConfig, c.GenerationSize)
	}
	if c.Elitism <= 0 || c.Elitism >= c.GenerationSize {
		return fmt.Errorf("%w: elitism must satisfy 0 < E < G, got E=%d G=%d", ErrInvalidConfig, c.Elitism, c.GenerationSize)
	}
	if c.Elitism%2 != 0 {
		return fmt.Errorf("%w: elitism must be even, got %d", ErrInvalidConfig, c.Elitism)
	}
	if rest := c.GenerationSize - c.Elitism; rest%2 != 0 || rest < 2 {
		return fmt.Errorf("%w: generation_size - elitism must be even and >= 2, got %d", ErrInvalidConfig, rest)
	}
	if c.TournamentSize <= 0 {
		return fmt.Errorf("%w: tournament_size must be > 0, got %d", ErrInvalidConfig, c.TournamentSize)
	}
	if c.NSamples <= 0 {
		return fmt.Errorf("%w: n_samples must be > 0, got %d", ErrInvalidConfig, c.NSamples)
	}
	if c.NRounds <= 0 || c.NSamples%c.NRounds != 0 {
		return fmt.Errorf("%w: n_rounds must divide n_samples, got R=%d N=%d", ErrInvalidConfig, c.NRounds, c.NSamples)
	}
	if c.SampleLifetime <= 0 || !isPowerOfTwo(c.SampleLifetime) {
		return fmt.Errorf("%w: sample_lifetime must be a power of two, got %d", ErrInvalidConfig, c.SampleLifetime)
	}
	if c.CrossoverBits <= 0 || c.CrossoverBits >= 33 {
		return fmt.Errorf("%w: crossover_bits must satisfy 0 < B < 33, got %d", ErrInvalidConfig, c.CrossoverBits)
	}
	if c.MutationOdds < 1 {
		return fmt.Errorf("%w: mutation_odds must be >= 1, got %d", ErrInvalidConfig, c.MutationOdds)
	}
	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}
