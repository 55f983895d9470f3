// Package rng provides the deterministic pseudo-random generator that seeds
// every simulation in the system. A generator is a pure function of its string
// seed: the same seed always yields the same stream, and generator state is
// never persisted - it is recreated from the seed on every run.
package rng

import "math"

// Rand is a deterministic random stream derived from a string seed.
// It produces float64 values in [0, 1).
type Rand struct {
	state uint32
}

// hashSeed mixes a string seed down to a 32-bit generator state.
// xmur3-style avalanche hashing keeps distinct seeds from trivially colliding.
func hashSeed(seed string) uint32 {
	h := uint32(1779033703) ^ uint32(len(seed))
	for _, r := range seed {
		h = (h ^ uint32(r)) * 3432918353
		h = h<<13 | h>>19
	}
	h = (h ^ h>>16) * 2246822507
	h = (h ^ h>>13) * 3266489909
	h ^= h >> 16
	return h
}

// New creates a generator from a string seed.
func New(seed string) *Rand {
	return &Rand{state: hashSeed(seed)}
}

// FromState creates a generator from a raw 32-bit state. Used where the seed
// is already numeric (per-instrument price series seeded by symbol hash).
func FromState(state uint32) *Rand {
	return &Rand{state: state}
}

// Float64 advances the stream and returns the next value in [0, 1).
// mulberry32 step: cheap, full 32-bit state space, good avalanche.
func (r *Rand) Float64() float64 {
	r.state += 0x6d2b79f5
	t := r.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return float64(t^t>>14) / 4294967296.0
}

// Uniform returns a value linearly interpolated between min and max.
func (r *Rand) Uniform(min, max float64) float64 {
	return min + (max-min)*r.Float64()
}

// Intn returns an integer in [0, n). n must be positive.
func (r *Rand) Intn(n int) int {
	i := int(math.Floor(r.Float64() * float64(n)))
	if i >= n {
		i = n - 1
	}
	return i
}

// Weighted pairs a selection weight with a value.
type Weighted[T any] struct {
	Weight float64
	Value  T
}

// WeightedPick selects an entry by cumulative weight. Ties break in list
// order, and the last entry absorbs any rounding overflow so a pick is always
// made even when the weights do not sum to a clean total.
func WeightedPick[T any](r *Rand, entries []Weighted[T]) T {
	total := 0.0
	for _, e := range entries {
		total += e.Weight
	}
	threshold := r.Float64() * total

	rolling := 0.0
	for _, e := range entries {
		rolling += e.Weight
		if threshold <= rolling {
			return e.Value
		}
	}
	return entries[len(entries)-1].Value
}

// HashSymbol hashes an instrument symbol to a 32-bit seed (FNV-1a).
func HashSymbol(symbol string) uint32 {
	h := uint32(2166136261)
	for _, r := range symbol {
		h ^= uint32(r)
		h *= 16777619
	}
	return h
}
