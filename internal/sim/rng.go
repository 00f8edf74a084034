// internal/sim/rng.go
package sim

import "math/rand"

// Rand is the randomness the engine draws from. *rand.Rand satisfies it;
// deterministic tests substitute a fixed-seed or scripted implementation.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand returns a generator seeded for live use.
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}
