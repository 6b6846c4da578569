// Package rng provides the seeded pseudo-random source used by the battle core.
//
// Every random decision in a battle (critical rolls, random targets, set
// effect procs, equipment rolls) draws from one Source so that an identical
// seed and action sequence replays to an identical outcome.
package rng

import (
	"math/rand/v2"
)

// Source is a deterministic random source seeded from a single int64.
// Not safe for concurrent use; each battle owns its own Source.
type Source struct {
	seed int64
	r    *rand.Rand
}

// New creates a Source seeded with seed.
func New(seed int64) *Source {
	return &Source{
		seed: seed,
		r:    rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9E3779B97F4A7C15)),
	}
}

// Seed returns the seed this Source was created with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Float64 returns a float in [0, 1).
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// IntN returns an int in [0, n). Returns 0 when n <= 0.
func (s *Source) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.IntN(n)
}

// IntRange returns an int in [lo, hi].
func (s *Source) IntRange(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + s.IntN(hi-lo+1)
}

// FloatRange returns a float in [lo, hi).
func (s *Source) FloatRange(lo, hi float64) float64 {
	return lo + s.Float64()*(hi-lo)
}

// IrwinHall returns a value in [lo, hi] distributed as the mean of n uniform
// draws, which concentrates results around the middle of the range.
func (s *Source) IrwinHall(lo, hi float64, n int) float64 {
	if n <= 0 {
		n = 1
	}
	var sum float64
	for range n {
		sum += s.Float64()
	}
	return lo + (sum/float64(n))*(hi-lo)
}

// WeightedIndex picks an index with probability proportional to weights[i].
// Returns -1 for an empty slice or a non-positive total weight.
func (s *Source) WeightedIndex(weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}

	return pickWeighted(weights, s.Float64()*total)
}

// pickWeighted walks the positive weights until roll is spent. A roll left
// over by rounding lands on the last positive weight.
func pickWeighted(weights []float64, roll float64) int {
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if roll < w {
			return i
		}
		roll -= w
		last = i
	}
	return last
}

// Pick returns a uniformly chosen element of items.
// The second result is false when items is empty.
func Pick[T any](s *Source, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[s.IntN(len(items))], true
}
