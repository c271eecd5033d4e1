// Package random provides the injectable random source used by mesh decomposition.
package random

import (
	"math/rand/v2"
	"time"
)

// Source draws the random numbers the decomposition needs.
// Implementations are not safe for concurrent use.
type Source interface {
	// IntRange returns an int in [lo, hi], both ends inclusive.
	IntRange(lo, hi int) int

	// Float32Range returns a float32 in [lo, hi].
	Float32Range(lo, hi float32) float32
}

// PCG is a Source backed by a seeded PCG generator.
type PCG struct {
	r *rand.Rand
}

// New returns a deterministic Source for the given seed.
func New(seed uint64) *PCG {
	return &PCG{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewFromTime returns a Source seeded from the wall clock.
func NewFromTime() *PCG {
	return New(uint64(time.Now().UnixNano()))
}

// FromSeed returns New(seed), or a time-seeded source when seed is zero.
func FromSeed(seed uint64) *PCG {
	if seed == 0 {
		return NewFromTime()
	}
	return New(seed)
}

// IntRange implements Source.
func (p *PCG) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + p.r.IntN(hi-lo+1)
}

// Float32Range implements Source.
func (p *PCG) Float32Range(lo, hi float32) float32 {
	if hi <= lo {
		return lo
	}
	return lo + p.r.Float32()*(hi-lo)
}
