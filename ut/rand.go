// Package ut holds small helpers shared by the workload tooling.
package ut

const (
	randMul = 1664525
	randAdd = 1013904223
)

// DefaultSeed seeds a Rand created with seed 0.
const DefaultSeed = 65654363

// Rand is a linear congruential generator. Sequences are reproducible for a
// given seed, which keeps workload runs comparable.
type Rand struct {
	state uint64
}

// NewRand returns a generator seeded with seed.
func NewRand(seed int64) *Rand {
	r := &Rand{}
	r.Seed(seed)
	return r
}

// Seed resets the generator.
func (r *Rand) Seed(seed int64) {
	if seed == 0 {
		seed = DefaultSeed
	}
	r.state = uint64(seed)
}

// Next returns the next pseudo-random value.
func (r *Rand) Next() uint64 {
	r.state = r.state*randMul + randAdd
	return r.state
}

// Int64 returns a non-negative pseudo-random int64.
func (r *Rand) Int64() int64 {
	return int64(r.Next() >> 1)
}
