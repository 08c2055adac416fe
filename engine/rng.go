package engine

import "math/rand"

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position increments with every call, so a sequence can be reproduced
// exactly from (seed, position) in tests and bug reports.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Chance reports one Bernoulli trial at probability p. p at or below 0
// never hits; p at or above 1 always hits. The position advances either
// way.
func (r *RNG) Chance(p float64) bool {
	r.pos++
	return r.src.Float64() < p
}

// Roll returns a random integer in [0, max]. Used for damage rolls.
// Every method draws exactly one value from the source so RestoreRNG
// can replay the stream by position alone.
func (r *RNG) Roll(max int) int {
	r.pos++
	f := r.src.Float64()
	if max <= 0 {
		return 0
	}
	return int(f * float64(max+1))
}

// Between returns a random integer in [min, max].
func (r *RNG) Between(min, max int) int {
	r.pos++
	f := r.src.Float64()
	if max <= min {
		return min
	}
	return min + int(f*float64(max-min+1))
}

// Seed returns the seed this RNG was created from.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of RNG calls made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}

// RestoreRNG creates an RNG and advances it to the given position,
// reproducing the exact stream state.
func RestoreRNG(seed int64, position int64) *RNG {
	rng := NewRNG(seed)
	for i := int64(0); i < position; i++ {
		rng.src.Float64()
	}
	rng.pos = position
	return rng
}
