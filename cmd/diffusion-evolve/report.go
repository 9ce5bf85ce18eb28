package main

import (
	"log"

	diffrng "github.com/VerKWer/diffusion/internal/rng"
)

// progressReporter receives one update per completed generation per
// worker. logReporter (the default) and tuiReporter (behind -watch)
// are the two implementations.
type progressReporter interface {
	Report(worker, generation int, loss float32)
}

type logReporter struct{}

func (logReporter) Report(worker, generation int, loss float32) {
	log.Printf("worker %d: generation %d best loss %g", worker, generation, loss)
}

func workerSeed(runSeed int64, worker int) int64 {
	return diffrng.SeedForWorker(runSeed, worker)
}
