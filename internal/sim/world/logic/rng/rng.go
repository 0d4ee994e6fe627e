package rng

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// Stream names used by the world. Each consumer owns its stream so the order
// in which one is drawn never shifts another.
const (
	StreamScatter = "scatter"
	StreamHarvest = "harvest"
)

// New returns a replayable PCG stream for (seed, salt).
func New(seed int64, salt string) *rand.Rand {
	// Non-cryptographic PRNG is intentional for deterministic simulation behavior.
	// #nosec G404
	return rand.New(NewPCG(seed, salt))
}

// NewPCG exposes the underlying source so callers can hash or checkpoint its
// state with MarshalBinary.
func NewPCG(seed int64, salt string) *rand.PCG {
	return rand.NewPCG(seedWord(seed, salt+"/a"), seedWord(seed, salt+"/b"))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

// Uniform draws from [lo, hi).
func Uniform(r interface{ Float64() float64 }, lo, hi float64) float64 {
	return r.Float64()*(hi-lo) + lo
}
