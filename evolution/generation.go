package evolution

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/VerKWer/diffusion/diffusion"
	"github.com/VerKWer/diffusion/evaluation"
)

// Generation holds a fixed-size population of evaluated diffusion
// functions (§4.8). E is the concrete Evaluator implementation in use
// for the run (*evaluation.ArithmeticEvaluator or
// *evaluation.GeometricEvaluator) so the evolution loop's inner calls
// stay monomorphic rather than going through an interface on every
// member access.
type Generation[E evaluation.Evaluator] struct {
	Members []E
}

// NewRandomGeneration builds a Generation of size g, each member a
// freshly randomised Variant of the given family wrapped by newEval.
func NewRandomGeneration[E evaluation.Evaluator](g int, family diffusion.Family, newEval func(diffusion.Variant) E, rng *rand.Rand) *Generation[E] {
	members := make([]E, g)
	for i := range members {
		members[i] = newEval(diffusion.Random(family, rng))
	}
	return &Generation[E]{Members: members}
}

// SortByLoss orders members descending by loss, so index 0 is the
// worst and index G-1 is the best (§4.8): the elite end of the array
// is the high-index end, by convention.
func (g *Generation[E]) SortByLoss() {
	sort.SliceStable(g.Members, func(i, j int) bool {
		return g.Members[i].Loss() > g.Members[j].Loss()
	})
}

// Best returns the lowest-loss member. SortByLoss must have been
// called since the last mutation of Members.
func (g *Generation[E]) Best() E {
	return g.Members[len(g.Members)-1]
}

// record is the on-disk shape of a single evaluator (§6 checkpoint
// format): the wrapped function's tagged parameters plus accumulator
// state. The samples buffer is deliberately absent — it is not
// persisted. An unevaluated member (age 0) holds +Inf, which JSON
// cannot encode, so its W1s and Loss are written as zeros and restored
// as +Inf by UnmarshalRecords.
type record struct {
	Func diffusion.Record `json:"func"`
	W1s  [64]float32      `json:"w1s"`
	Loss float32          `json:"loss"`
	Age  uint32           `json:"age"`
}

func toRecord(e evaluation.Evaluator) record {
	r := record{Func: diffusion.ToRecord(e.Func()), Age: e.Age()}
	if r.Age > 0 {
		r.W1s = e.W1s()
		r.Loss = e.Loss()
	}
	return r
}

// MarshalRecords renders the generation as its checkpoint JSON array,
// one record per member in current order.
func (g *Generation[E]) MarshalRecords() ([]byte, error) {
	recs := make([]record, len(g.Members))
	for i, m := range g.Members {
		recs[i] = toRecord(m)
	}
	return json.Marshal(recs)
}

// UnmarshalRecords decodes a checkpoint JSON array of length g into a
// new Generation, reconstructing each member via restore. It is a
// function rather than a Generation method because Go forbids
// introducing a fresh type parameter on a method.
func UnmarshalRecords[E evaluation.Evaluator](data []byte, g int, restore func(f diffusion.Variant, w1s [64]float32, loss float32, age uint32) E) (*Generation[E], error) {
	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckpointMalformed, err)
	}
	if len(recs) != g {
		return nil, fmt.Errorf("%w: expected %d members, got %d", ErrCheckpointMalformed, g, len(recs))
	}
	members := make([]E, g)
	for i, r := range recs {
		f, err := diffusion.FromRecord(r.Func)
		if err != nil {
			return nil, fmt.Errorf("%w: member %d: %v", ErrCheckpointMalformed, i, err)
		}
		if r.Age == 0 {
			r.Loss = float32(math.Inf(1))
			for b := range r.W1s {
				r.W1s[b] = r.Loss
			}
		}
		members[i] = restore(f, r.W1s, r.Loss, r.Age)
	}
	return &Generation[E]{Members: members}, nil
}
