package evolution

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/VerKWer/diffusion/diffusion"
	"github.com/VerKWer/diffusion/evaluation"
)

// checkpointFile is the on-disk envelope around a Generation's
// records (§6): config is persisted alongside the population, checked
// by Config.Validate on load and used as the resumed run's config (it
// is not compared with any other config), and counter/family round out
// what NextGen needs to pick back up where it left off. The samples buffer is never persisted — a
// fresh buffer is drawn on load.
type checkpointFile struct {
	Config  Config           `json:"config"`
	Family  diffusion.Family `json:"family"`
	Counter int              `json:"counter"`
	Members json.RawMessage  `json:"members"`
}

// SaveCheckpoint atomically writes ev's state to path: it writes to a
// sibling temp file first and renames over the destination, so a
// crash mid-write never leaves a truncated checkpoint in place.
func SaveCheckpoint[E evaluation.Evaluator](ev *Evolution[E], path string) error {
	members, err := ev.gen.MarshalRecords()
	if err != nil {
		return fmt.Errorf("evolution: marshal checkpoint: %w", err)
	}
	cf := checkpointFile{
		Config:  ev.cfg,
		Family:  ev.family,
		Counter: ev.counter,
		Members: members,
	}
	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return fmt.Errorf("evolution: marshal checkpoint: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("evolution: create checkpoint temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("evolution: write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("evolution: close checkpoint temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("evolution: commit checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint reads a checkpoint written by SaveCheckpoint,
// restoring members via restore and drawing a fresh sample set with
// rng (the samples buffer is never persisted). newEval is retained so
// the returned Evolution can keep constructing fresh children via
// NextGen exactly as a freshly-New'd one would.
func LoadCheckpoint[E evaluation.Evaluator](
	path string,
	newEval func(diffusion.Variant) E,
	restore func(f diffusion.Variant, w1s [64]float32, loss float32, age uint32) E,
	rng *rand.Rand,
) (*Evolution[E], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("evolution: read checkpoint: %w", err)
	}
	var cf checkpointFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckpointMalformed, err)
	}
	if err := cf.Config.Validate(); err != nil {
		return nil, fmt.Errorf("evolution: checkpoint config: %w", err)
	}

	gen, err := UnmarshalRecords(cf.Members, cf.Config.GenerationSize, restore)
	if err != nil {
		return nil, err
	}

	ev := &Evolution[E]{
		cfg:     cf.Config,
		family:  cf.Family,
		newEval: newEval,
		gen:     gen,
		counter: cf.Counter,
	}
	diffusion.CrossoverBits = cf.Config.CrossoverBits
	diffusion.MutationOdds = cf.Config.MutationOdds
	ev.samples = make([]uint64, ev.cfg.NSamples)
	for i := range ev.samples {
		ev.samples[i] = rng.Uint64()
	}
	ev.cdfScaled = evaluation.BinomCDFScaled64(ev.cfg.NSamples / ev.cfg.NRounds)
	return ev, nil
}
