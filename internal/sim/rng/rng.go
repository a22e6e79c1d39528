// Package rng supplies the single seedable random source shared by population
// shuffling and relocation sampling.
package rng

import "math/rand"

// Source is satisfied by *rand.Rand.
type Source interface {
	// Intn returns a uniform integer in [0, n).
	Intn(n int) int
	// Shuffle performs a Fisher–Yates shuffle of n elements.
	Shuffle(n int, swap func(i, j int))
}

func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Derive mixes a run seed with a tick so a run resumed from a checkpoint gets
// a reproducible stream of its own.
func Derive(seed int64, tick uint64) int64 {
	// splitmix64 finalizer.
	z := uint64(seed) + (tick+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}
