package evolution

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VerKWer/diffusion/diffusion"
	"github.com/VerKWer/diffusion/evaluation"
)

func TestSortByLossDescending(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	gen := NewRandomGeneration(8, diffusion.FamilyMRXSM, evaluation.NewArithmeticEvaluator, rng)
	cdf := uniformCDF()
	for _, m := range gen.Members {
		m.Update(sampleBatch(rng, 32), 4, cdf)
	}

	var minLoss float32 = gen.Members[0].Loss()
	for _, m := range gen.Members {
		if m.Loss() < minLoss {
			minLoss = m.Loss()
		}
	}

	gen.SortByLoss()
	for i := 0; i < len(gen.Members)-1; i++ {
		require.GreaterOrEqual(t, gen.Members[i].Loss(), gen.Members[i+1].Loss())
	}
	require.Equal(t, minLoss, gen.Best().Loss())
}

func TestMarshalUnmarshalRecordsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	gen := NewRandomGeneration(4, diffusion.FamilyMRXR, evaluation.NewGeometricEvaluator, rng)
	for _, m := range gen.Members {
		m.Update(sampleBatch(rng, 16), 4, uniformCDF())
	}

	data, err := gen.MarshalRecords()
	require.NoError(t, err)

	restored, err := UnmarshalRecords(data, 4, evaluation.RestoreGeometricEvaluator)
	require.NoError(t, err)
	require.Len(t, restored.Members, 4)
	for i := range gen.Members {
		require.Equal(t, gen.Members[i].Func().String(), restored.Members[i].Func().String())
		require.Equal(t, gen.Members[i].Loss(), restored.Members[i].Loss())
		require.Equal(t, gen.Members[i].Age(), restored.Members[i].Age())
		require.Equal(t, gen.Members[i].W1s(), restored.Members[i].W1s())
	}
}

func TestUnmarshalRecordsWrongLength(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	gen := NewRandomGeneration(3, diffusion.FamilyMXR, evaluation.NewArithmeticEvaluator, rng)
	data, err := gen.MarshalRecords()
	require.NoError(t, err)

	_, err = UnmarshalRecords(data, 4, evaluation.RestoreArithmeticEvaluator)
	require.ErrorIs(t, err, ErrCheckpointMalformed)
}

func TestUnmarshalRecordsMalformedJSON(t *testing.T) {
	_, err := UnmarshalRecords([]byte("not json"), 1, evaluation.RestoreArithmeticEvaluator)
	require.ErrorIs(t, err, ErrCheckpointMalformed)
}

func sampleBatch(rng *rand.Rand, n int) []uint64 {
	s := make([]uint64, n)
	for i := range s {
		s[i] = rng.Uint64()
	}
	return s
}

func uniformCDF() [65]float32 {
	var cdf [65]float32
	for i := range cdf {
		cdf[i] = float32(i) / 64
	}
	return cdf
}
