package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/VerKWer/diffusion/diffusion"
	"github.com/VerKWer/diffusion/evaluation"
	"github.com/VerKWer/diffusion/internal/stats"
)

// runDiagnose measures and reports the avalanche diagram of a single,
// explicitly parameterised diffusion function — independent of the
// evolution loop, for inspecting a specific candidate (e.g. one pulled
// out of a checkpoint).
func runDiagnose(args []string) {
	fs := flag.NewFlagSet("diagnose", flag.ExitOnError)
	family := fs.String("family", "mrxsm", "diffusion function family: mxr|mrxr|mrxs|rxsm|mrxsm")
	m := fs.Uint64("m", 0x6eed0e9da4d94a4f, "multiplier (mxr/mrxr/mrxs/rxsm)")
	m1 := fs.Uint64("m1", 0x6eed0e9da4d94a4f, "first multiplier (mrxsm)")
	m2 := fs.Uint64("m2", 0x6eed0e9da4d94a4f, "second multiplier (mrxsm)")
	s := fs.Uint64("s", 32, "shift (mxr)")
	s1 := fs.Uint64("s1", 32, "first shift (mrxr/mrxs/rxsm/mrxsm)")
	s2 := fs.Uint64("s2", 60, "second shift (mrxr/mrxs/rxsm/mrxsm)")
	samples := fs.Int("samples", 1000, "number of random input samples")
	seed := fs.Int64("seed", 1, "rng seed")
	fs.Parse(args)

	rec := diffusion.Record{
		Tag: diffusion.Family(*family),
		M:   *m, M1: *m1, M2: *m2,
		S: uint32(*s), S1: uint32(*s1), S2: uint32(*s2),
	}
	f, err := diffusion.FromRecord(rec)
	if err != nil {
		log.Fatalf("diagnose: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	diagram := evaluation.MeasureAvalancheDiagram(f, *samples, rng)
	sse := diagram.SSE()
	mean, variance := diagram.ResidualStats()

	good := 0
	for i := 0; i < 64; i++ {
		for j := 0; j < 64; j++ {
			count := diagram.Counts[i][j]
			residual := float64(count) - float64(*samples)/2
			if residual*residual/(float64(*samples)/2) < float64(*samples)/64 {
				good++
			}
		}
	}
	lb := stats.WilsonLowerBound(good, 64*64, 0.95)

	fmt.Printf("%s\n", f.String())
	fmt.Printf("samples:        %d\n", *samples)
	fmt.Printf("avalanche SSE:  %.2f\n", sse)
	fmt.Printf("residual mean:  %.4f\n", mean)
	fmt.Printf("residual var:   %.4f\n", variance)
	fmt.Printf("well-behaved cells (95%% Wilson lower bound): %.4f\n", lb)
}
