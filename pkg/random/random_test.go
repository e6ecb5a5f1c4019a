package random_test

import (
	"testing"

	"github.com/sandrolain/godice/pkg/random"
)

func TestSeededIsReproducible(t *testing.T) {
	a := random.NewSeeded(42)
	b := random.NewSeeded(42)
	for i := 0; i < 100; i++ {
		if x, y := a.IntN(6), b.IntN(6); x != y {
			t.Fatalf("draw %d differs: %d != %d", i, x, y)
		}
	}
	if a.Seed() != 42 {
		t.Fatalf("expected seed 42, got %d", a.Seed())
	}
}

func TestSeededRange(t *testing.T) {
	s := random.NewSeeded(7)
	for i := 0; i < 1000; i++ {
		if v := s.IntN(20); v < 0 || v >= 20 {
			t.Fatalf("draw out of range: %d", v)
		}
	}
}

func TestDefaultRange(t *testing.T) {
	s := random.Default()
	for i := 0; i < 1000; i++ {
		if v := s.IntN(3); v < 0 || v >= 3 {
			t.Fatalf("draw out of range: %d", v)
		}
	}
}

func TestSequence(t *testing.T) {
	s := random.NewSequence(0, 5, 7, -1)
	want := []int{0, 5, 1, 5, 0}
	for i, w := range want {
		if got := s.IntN(6); got != w {
			t.Fatalf("draw %d: expected %d, got %d", i, w, got)
		}
	}
	if s.Remaining() != 0 {
		t.Fatalf("unexpected remaining count %d", s.Remaining())
	}
}

func TestNewSeed(t *testing.T) {
	a, err := random.NewSeed()
	if err != nil {
		t.Fatal(err)
	}
	b, err := random.NewSeed()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("expected distinct seeds, got %d twice", a)
	}
}
