package evolution

import (
	"math/rand"

	"github.com/VerKWer/diffusion/diffusion"
	"github.com/VerKWer/diffusion/evaluation"
)

// Evolution drives the generational loop of §4.9 over a single
// population: evaluate, sort, reproduce (elitism + tournament +
// crossover), advance, refresh samples on the configured cadence. It
// is single-threaded and synchronous by design — concurrency, where
// wanted, comes from running several independent Evolution values in
// parallel goroutines (one per worker), never from sharing one.
type Evolution[E evaluation.Evaluator] struct {
	cfg       Config
	family    diffusion.Family
	newEval   func(diffusion.Variant) E
	gen       *Generation[E]
	samples   []uint64
	cdfScaled [65]float32
	counter   int
}

// New builds an Evolution with a freshly randomised Generation and an
// initial sample draw.
func New[E evaluation.Evaluator](cfg Config, family diffusion.Family, newEval func(diffusion.Variant) E, rng *rand.Rand) (*Evolution[E], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	diffusion.CrossoverBits = cfg.CrossoverBits
	diffusion.MutationOdds = cfg.MutationOdds
	ev := &Evolution[E]{
		cfg:     cfg,
		family:  family,
		newEval: newEval,
		gen:     NewRandomGeneration(cfg.GenerationSize, family, newEval, rng),
	}
	ev.refreshSamples(rng)
	return ev, nil
}

// Generation exposes the current population, e.g. for checkpointing
// or reporting the best member.
func (ev *Evolution[E]) Generation() *Generation[E] { return ev.gen }

// Counter returns the number of generations completed so far.
func (ev *Evolution[E]) Counter() int { return ev.counter }

func (ev *Evolution[E]) refreshSamples(rng *rand.Rand) {
	ev.samples = make([]uint64, ev.cfg.NSamples)
	for i := range ev.samples {
		ev.samples[i] = rng.Uint64()
	}
	ev.cdfScaled = evaluation.BinomCDFScaled64(ev.cfg.NSamples / ev.cfg.NRounds)
}

// NextGen performs one full generational step and returns the best
// (lowest) loss observed after this step's evaluation (§4.9):
//
//  1. Evaluate. If the generation counter is a multiple of L, evaluate
//     every member against the current sample set; otherwise evaluate
//     only the non-elite members (the elites already hold a valid
//     accumulator from a prior round). Then sort descending by loss,
//     so the E best are contiguous at the high-index end.
//  2. Reproduce. Fill the G-E non-elite slots two at a time: two
//     parents drawn by independent tournaments of size T, crossed
//     over into two children, each wrapped in a fresh Evaluator
//     (age=0, loss=+Inf).
//  3. Write-back. The children overwrite the non-elite (low-index)
//     slots in place; the elites are left untouched.
//  4. Advance. Increment the generation counter; if it is now a
//     multiple of L, draw a fresh sample set before the next call.
func (ev *Evolution[E]) NextGen(rng *rand.Rand) float32 {
	nonElite := ev.cfg.GenerationSize - ev.cfg.Elitism
	fullEval := ev.counter%ev.cfg.SampleLifetime == 0

	toEvaluate := ev.gen.Members[:nonElite]
	if fullEval {
		toEvaluate = ev.gen.Members
	}
	for _, m := range toEvaluate {
		m.Update(ev.samples, ev.cfg.NRounds, ev.cdfScaled)
	}
	ev.gen.SortByLoss()

	for i := 0; i < nonElite; i += 2 {
		p1 := ev.tournamentWinner(rng)
		p2 := ev.tournamentWinner(rng)
		children := p1.Crossover(p2, rng)
		ev.gen.Members[i] = ev.newEval(children[0])
		if i+1 < nonElite {
			ev.gen.Members[i+1] = ev.newEval(children[1])
		}
	}

	ev.counter++
	if ev.counter%ev.cfg.SampleLifetime == 0 {
		ev.refreshSamples(rng)
	}

	return ev.gen.Best().Loss()
}

// tournamentWinner draws T members uniformly at random with
// replacement from the full current population and returns the
// lowest-loss (best) one's wrapped function. Tournaments are run
// against the whole population, including elites — elites are simply
// likely winners, not a separate mating pool (§4.9).
func (ev *Evolution[E]) tournamentWinner(rng *rand.Rand) diffusion.Variant {
	best := ev.gen.Members[rng.Intn(len(ev.gen.Members))]
	for i := 1; i < ev.cfg.TournamentSize; i++ {
		cand := ev.gen.Members[rng.Intn(len(ev.gen.Members))]
		if cand.Loss() < best.Loss() {
			best = cand
		}
	}
	return best.Func()
}
