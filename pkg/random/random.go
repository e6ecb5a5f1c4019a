// Package random provides the random sources used to roll dice.
//
// The zero-configuration source draws from math/rand/v2's process-wide
// generator and is safe for concurrent use. Seeded sources are reproducible:
// a single evaluation draws in operand order, so replaying a notation with
// the same seed yields the same rolls.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Source draws uniform integers in [0, n).
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Default returns the process-wide source. Safe for concurrent use.
func Default() Source {
	return globalSource{}
}

// Seeded is a reproducible source backed by a PCG generator.
// Safe for concurrent use, although concurrent draws make the sequence
// order nondeterministic.
type Seeded struct {
	mu   sync.Mutex
	seed uint64
	r    *rand.Rand
}

// NewSeeded creates a reproducible source from seed.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{
		seed: seed,
		r:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// IntN implements Source.
func (s *Seeded) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// Seed returns the seed the source was created with.
func (s *Seeded) Seed() uint64 {
	return s.seed
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return binary.LittleEndian.Uint64(b[:]), nil
}

// Sequence replays a fixed list of draws, then falls back to zero.
// It is intended for tests that need exact rolls: each value is returned
// modulo n.
type Sequence struct {
	mu     sync.Mutex
	values []int
	pos    int
}

// NewSequence creates a source that returns values in order.
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: values}
}

// IntN implements Source.
func (s *Sequence) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.values) {
		return 0
	}
	v := s.values[s.pos]
	s.pos++
	return ((v % n) + n) % n
}

// Remaining returns how many scripted draws are left.
func (s *Sequence) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values) - s.pos
}
