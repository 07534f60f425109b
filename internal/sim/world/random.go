package world

import "math/rand"

// Random is the session-seeded source every handler draws from.
type Random struct {
	r *rand.Rand
}

func NewRandom(seed int64) *Random { return &Random{r: rand.New(rand.NewSource(seed))} }

// Int returns a uniform int in [lo, hi].
func (r *Random) Int(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.r.Intn(hi-lo+1)
}

// Float returns a uniform float in [lo, hi).
func (r *Random) Float(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.r.Float64()*(hi-lo)
}

func (r *Random) Bool() bool { return r.r.Intn(2) == 0 }

func (r *Random) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.Intn(n)
}
