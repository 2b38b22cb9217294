package engine

import (
	"math/rand"
	"time"
)

// Rand is the slice of *rand.Rand the engine draws from. Tests pass a seeded
// source to make placement and computer targeting reproducible.
type Rand interface {
	Intn(n int) int
}

// NewRNG returns a time-seeded generator.
func NewRNG() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }

func randomCoord(r Rand, size int) (row, col int) {
	return r.Intn(size), r.Intn(size)
}
