package rng

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeedForWorkerDeterministic(t *testing.T) {
	require.Equal(t, SeedForWorker(42, 3), SeedForWorker(42, 3))
}

func TestSeedForWorkerVariesByWorker(t *testing.T) {
	require.NotEqual(t, SeedForWorker(42, 0), SeedForWorker(42, 1))
}

func TestSeedForWorkerVariesByRunSeed(t *testing.T) {
	require.NotEqual(t, SeedForWorker(1, 0), SeedForWorker(2, 0))
}
