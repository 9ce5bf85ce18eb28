// Command diffusion-evolve runs the genetic search for high-quality
// 64-bit diffusion functions: one independent Evolution per worker,
// each seeded deterministically from a single run seed, periodically
// checkpointed to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/VerKWer/diffusion/diffusion"
	"github.com/VerKWer/diffusion/evaluation"
	"github.com/VerKWer/diffusion/evolution"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "diagnose" {
		runDiagnose(os.Args[2:])
		return
	}

	var (
		familyFlag      = flag.String("family", "mrxsm", "diffusion function family: mxr|mrxr|mrxs|rxsm|mrxsm")
		policyFlag      = flag.String("policy", "geometric", "evaluator accumulation policy: arithmetic|geometric")
		configFlag      = flag.String("config", "default", "base config: default|debug")
		seedFlag        = flag.Int64("seed", time.Now().UnixNano(), "top-level seed; worker seeds are derived from it deterministically")
		workersFlag     = flag.Int("workers", 1, "number of independent evolutions to run concurrently")
		generations     = flag.Int("generations", 0, "override NGenerations from the chosen base config (0 = use base config's value)")
		checkpointDir   = flag.String("checkpoint-dir", "", "directory to write per-worker checkpoints into (empty = no checkpointing)")
		checkpointEvery = flag.Int("checkpoint-every", 32, "write a checkpoint every N generations")
		resume          = flag.Bool("resume", false, "resume each worker from checkpoint-dir/worker-<i>.json instead of starting fresh")
		watch           = flag.Bool("watch", false, "show a live terminal progress view instead of periodic log lines")
	)
	flag.Parse()

	family := diffusion.Family(*familyFlag)
	switch family {
	case diffusion.FamilyMXR, diffusion.FamilyMRXR, diffusion.FamilyMRXS, diffusion.FamilyRXSM, diffusion.FamilyMRXSM:
	default:
		log.Fatalf("unknown family %q", *familyFlag)
	}

	var cfg evolution.Config
	switch *configFlag {
	case "default":
		cfg = evolution.DefaultConfig()
	case "debug":
		cfg = evolution.DebugConfig()
	default:
		log.Fatalf("unknown config %q", *configFlag)
	}
	if *generations > 0 {
		cfg.NGenerations = *generations
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutting down: finishing in-flight generation on each worker...")
		cancel()
	}()

	if *checkpointDir != "" {
		if err := os.MkdirAll(*checkpointDir, 0o755); err != nil {
			log.Fatalf("create checkpoint dir: %v", err)
		}
	}

	var reporter progressReporter = logReporter{}
	if *watch {
		tr, stop := newTUIReporter(*workersFlag, cfg.NGenerations)
		reporter = tr
		defer stop()
	}

	opts := runOptions{
		family:          family,
		cfg:             cfg,
		seed:            *seedFlag,
		workers:         *workersFlag,
		checkpointDir:   *checkpointDir,
		checkpointEvery: *checkpointEvery,
		resume:          *resume,
		reporter:        reporter,
	}

	var best string
	var err error
	switch *policyFlag {
	case "arithmetic":
		best, err = runWorkers(ctx, opts, evaluation.NewArithmeticEvaluator, evaluation.RestoreArithmeticEvaluator)
	case "geometric":
		best, err = runWorkers(ctx, opts, evaluation.NewGeometricEvaluator, evaluation.RestoreGeometricEvaluator)
	default:
		log.Fatalf("unknown policy %q", *policyFlag)
	}
	if err != nil {
		log.Fatalf("evolution failed: %v", err)
	}
	fmt.Println(best)
}

type runOptions struct {
	family          diffusion.Family
	cfg             evolution.Config
	seed            int64
	workers         int
	checkpointDir   string
	checkpointEvery int
	resume          bool
	reporter        progressReporter
}

// runWorkers launches opts.workers independent Evolution[E] runs, each
// in its own goroutine and each seeded deterministically from
// opts.seed, and returns the best function found across all of them.
func runWorkers[E evaluation.Evaluator](
	ctx context.Context,
	opts runOptions,
	newEval func(diffusion.Variant) E,
	restore func(f diffusion.Variant, w1s [64]float32, loss float32, age uint32) E,
) (string, error) {
	type outcome struct {
		worker int
		best   diffusion.Variant
		loss   float32
		err    error
	}

	results := make(chan outcome, opts.workers)
	var wg sync.WaitGroup
	for w := 0; w < opts.workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			best, loss, err := runWorker(ctx, opts, worker, newEval, restore)
			results <- outcome{worker: worker, best: best, loss: loss, err: err}
		}(w)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		bestOverall diffusion.Variant
		bestLoss    = float32(1e38)
		firstErr    error
	)
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		if r.loss < bestLoss {
			bestLoss = r.loss
			bestOverall = r.best
		}
	}
	if firstErr != nil {
		return "", firstErr
	}
	if bestOverall == nil {
		return "", fmt.Errorf("no worker completed successfully")
	}
	return fmt.Sprintf("%s loss=%g", bestOverall.String(), bestLoss), nil
}

func runWorker[E evaluation.Evaluator](
	ctx context.Context,
	opts runOptions,
	worker int,
	newEval func(diffusion.Variant) E,
	restore func(f diffusion.Variant, w1s [64]float32, loss float32, age uint32) E,
) (diffusion.Variant, float32, error) {
	checkpointPath := ""
	if opts.checkpointDir != "" {
		checkpointPath = filepath.Join(opts.checkpointDir, fmt.Sprintf("worker-%d.json", worker))
	}

	var rng *rand.Rand
	var ev *evolution.Evolution[E]
	var err error

	if opts.resume && checkpointPath != "" {
		rng = rand.New(rand.NewSource(workerSeed(opts.seed, worker)))
		ev, err = evolution.LoadCheckpoint(checkpointPath, newEval, restore, rng)
		if err != nil {
			return nil, 0, fmt.Errorf("worker %d: resume: %w", worker, err)
		}
	} else {
		rng = rand.New(rand.NewSource(workerSeed(opts.seed, worker)))
		ev, err = evolution.New(opts.cfg, opts.family, newEval, rng)
		if err != nil {
			return nil, 0, fmt.Errorf("worker %d: init: %w", worker, err)
		}
	}

	for g := ev.Counter(); g < opts.cfg.NGenerations; g++ {
		select {
		case <-ctx.Done():
			if checkpointPath != "" {
				_ = evolution.SaveCheckpoint(ev, checkpointPath)
			}
			best := ev.Generation().Best()
			return best.Func(), best.Loss(), nil
		default:
		}

		loss := ev.NextGen(rng)
		opts.reporter.Report(worker, ev.Counter(), loss)

		if checkpointPath != "" && opts.checkpointEvery > 0 && ev.Counter()%opts.checkpointEvery == 0 {
			if err := evolution.SaveCheckpoint(ev, checkpointPath); err != nil {
				log.Printf("worker %d: checkpoint failed: %v", worker, err)
			}
		}
	}

	if checkpointPath != "" {
		_ = evolution.SaveCheckpoint(ev, checkpointPath)
	}
	best := ev.Generation().Best()
	return best.Func(), best.Loss(), nil
}
