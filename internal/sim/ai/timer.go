package ai

// Timer counts a duration down. It is inert until Set.
type Timer struct {
	Initialized bool    `json:"initialized"`
	Total       float64 `json:"total"`
	Remaining   float64 `json:"remaining"`
}

func (t *Timer) Set(d float64) {
	if d < 0 {
		d = 0
	}
	t.Initialized = true
	t.Total = d
	t.Remaining = d
}

// Pass advances the timer and reports whether it has expired.
func (t *Timer) Pass(dt float64) bool {
	if !t.Initialized {
		return false
	}
	t.Remaining -= dt
	return t.Remaining <= 0
}

// Rewind gives back d seconds without letting elapsed time go below zero.
func (t *Timer) Rewind(d float64) {
	if !t.Initialized {
		return
	}
	t.Remaining += d
	if t.Remaining > t.Total {
		t.Remaining = t.Total
	}
}

func (t *Timer) Done() bool { return t.Initialized && t.Remaining <= 0 }

func (t *Timer) Elapsed() float64 {
	if !t.Initialized {
		return 0
	}
	e := t.Total - t.Remaining
	if e > t.Total {
		return t.Total
	}
	return e
}

// Pct is the fraction of time left, in [0,1].
func (t *Timer) Pct() float64 {
	if !t.Initialized || t.Total <= 0 {
		return 0
	}
	p := t.Remaining / t.Total
	if p < 0 {
		return 0
	}
	return p
}

func (t *Timer) Reset() { *t = Timer{} }
