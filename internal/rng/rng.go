// Package rng provides deterministic seed derivation for independent
// parallel workers, so a multi-worker run can be replayed bit-for-bit
// from a single top-level seed.
package rng

import (
	"crypto/sha256"
	"encoding/binary"
)

// SeedForWorker derives a worker's seed from a run-level seed and its
// worker index by hashing the pair and taking the first 8 bytes as a
// big-endian int64.
func SeedForWorker(runSeed int64, worker int) int64 {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(runSeed))
	binary.BigEndian.PutUint64(buf[8:], uint64(worker))
	h := sha256.Sum256(buf[:])
	return int64(binary.BigEndian.Uint64(h[:8]))
}
