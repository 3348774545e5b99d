package sat

// rng is the linear-congruential generator MiniSat uses for --rnd-seed,
// --rnd-freq and --rnd-pol. It is deterministic given its seed, which keeps
// search reproducible across runs (modulo the non-goal of cross-platform
// floating-point determinism, spec.md §1).
type rng struct {
	seed float64
}

func newRNG(seed float64) *rng {
	if seed == 0 {
		seed = 1 // the generator is undefined at seed 0
	}
	return &rng{seed: seed}
}

// Float64 returns a pseudo-random value in [0, 1).
func (r *rng) Float64() float64 {
	r.seed *= 1389796.0
	q := int32(r.seed / 2147483647.0)
	r.seed -= float64(q) * 2147483647.0
	return r.seed / 2147483647.0
}

// Intn returns a pseudo-random value in [0, n).
func (r *rng) Intn(n int) int {
	return int(r.Float64() * float64(n))
}

// Chance returns true with probability p.
func (r *rng) Chance(p float64) bool {
	return r.Float64() < p
}
