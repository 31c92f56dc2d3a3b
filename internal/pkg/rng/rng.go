// Package rng provides the injectable random source used for card sampling
// and stake selection. Battles themselves are deterministic; randomness only
// enters through catalog sampling and settlement, and seeding the source
// makes both replayable in tests.
package rng

import (
	"math/rand"
	"sync"
)

// Source produces random integers in [0, n)
type Source interface {
	Intn(n int) int
	// Perm returns a random permutation of [0, n)
	Perm(n int) []int
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeeded returns a Source seeded for reproducible sequences.
// Safe for concurrent use.
func NewSeeded(seed int64) Source {
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

func (s *lockedSource) Perm(n int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Perm(n)
}
