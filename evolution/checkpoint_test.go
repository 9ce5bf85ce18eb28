package evolution

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VerKWer/diffusion/diffusion"
	"github.com/VerKWer/diffusion/evaluation"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func mustMarshalConfig(cfg Config) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	return string(data)
}

func TestSaveLoadCheckpointRoundTrip(t *testing.T) {
	cfg := debugTestConfig()
	rng := rand.New(rand.NewSource(41))
	ev, err := New(cfg, diffusion.FamilyMRXS, evaluation.NewArithmeticEvaluator, rng)
	require.NoError(t, err)
	for g := 0; g < 6; g++ {
		ev.NextGen(rng)
	}

	path := filepath.Join(t.TempDir(), "checkpoint.json")
	require.NoError(t, SaveCheckpoint(ev, path))

	loadRNG := rand.New(rand.NewSource(999))
	loaded, err := LoadCheckpoint(path, evaluation.NewArithmeticEvaluator, evaluation.RestoreArithmeticEvaluator, loadRNG)
	require.NoError(t, err)

	require.Equal(t, ev.counter, loaded.counter)
	require.Equal(t, ev.family, loaded.family)
	require.Equal(t, ev.cfg, loaded.cfg)
	require.Len(t, loaded.gen.Members, len(ev.gen.Members))
	for i := range ev.gen.Members {
		require.Equal(t, ev.gen.Members[i].Func().String(), loaded.gen.Members[i].Func().String())
		require.Equal(t, ev.gen.Members[i].Loss(), loaded.gen.Members[i].Loss())
		require.Equal(t, ev.gen.Members[i].Age(), loaded.gen.Members[i].Age())
	}
	require.Len(t, loaded.samples, cfg.NSamples)
}

func TestLoadCheckpointRejectsMissingFile(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := LoadCheckpoint(filepath.Join(t.TempDir(), "missing.json"), evaluation.NewGeometricEvaluator, evaluation.RestoreGeometricEvaluator, rng)
	require.Error(t, err)
}

func TestLoadCheckpointRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, writeFile(path, `{"config":{"GenerationSize":0},"family":"mxr","counter":0,"members":[]}`))

	rng := rand.New(rand.NewSource(1))
	_, err := LoadCheckpoint(path, evaluation.NewArithmeticEvaluator, evaluation.RestoreArithmeticEvaluator, rng)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadCheckpointRejectsMalformedMembers(t *testing.T) {
	cfg := debugTestConfig()
	path := filepath.Join(t.TempDir(), "bad-members.json")
	data := `{"config":` + mustMarshalConfig(cfg) + `,"family":"mxr","counter":0,"members":[{"func":{"tag":"bogus"}}]}`
	require.NoError(t, writeFile(path, data))

	rng := rand.New(rand.NewSource(1))
	_, err := LoadCheckpoint(path, evaluation.NewArithmeticEvaluator, evaluation.RestoreArithmeticEvaluator, rng)
	require.Error(t, err)
}

// resumed run continuation: NextGen on a loaded Evolution advances the
// counter exactly the way it would have on the original.
func TestResumeContinuesGenerationCounter(t *testing.T) {
	cfg := debugTestConfig()
	rng := rand.New(rand.NewSource(55))
	ev, err := New(cfg, diffusion.FamilyMXR, evaluation.NewArithmeticEvaluator, rng)
	require.NoError(t, err)
	for g := 0; g < 3; g++ {
		ev.NextGen(rng)
	}
	path := filepath.Join(t.TempDir(), "resume.json")
	require.NoError(t, SaveCheckpoint(ev, path))

	loadRNG := rand.New(rand.NewSource(77))
	loaded, err := LoadCheckpoint(path, evaluation.NewArithmeticEvaluator, evaluation.RestoreArithmeticEvaluator, loadRNG)
	require.NoError(t, err)
	require.Equal(t, 3, loaded.Counter())

	loaded.NextGen(loadRNG)
	require.Equal(t, 4, loaded.Counter())
}
