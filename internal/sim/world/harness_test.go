package world

import (
	"testing"

	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/catalogs"
	"taproom.ai/internal/sim/entity"
	"taproom.ai/internal/sim/nav"
	"taproom.ai/internal/sim/tuning"
)

const testDT = 0.05

func newTestWorld(t *testing.T, mutate func(*WorldConfig)) *World {
	t.Helper()
	cfg := WorldConfig{
		ID:      "test",
		Seed:    42,
		Tuning:  tuning.Defaults(),
		Pathing: nav.Options{Inline: true},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	w, err := New(cfg, catalogs.Builtin())
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	t.Cleanup(w.Close)
	return w
}

func stepN(w *World, n int) {
	for i := 0; i < n; i++ {
		w.StepOnce(testDT)
	}
}

// stepUntil steps until cond holds and returns the number of ticks taken.
func stepUntil(t *testing.T, w *World, maxTicks int, what string, cond func() bool) int {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		if cond() {
			return i
		}
		w.StepOnce(testDT)
	}
	if cond() {
		return maxTicks
	}
	t.Fatalf("%s: not reached after %d ticks", what, maxTicks)
	return 0
}

func mustAgent(t *testing.T, w *World, r entity.Ref) *Agent {
	t.Helper()
	a, ok := w.agents.Get(r)
	if !ok {
		t.Fatalf("agent %s is gone", r)
	}
	return a
}

func stateOf(w *World, r entity.Ref) (ai.State, bool) {
	a, ok := w.agents.Get(r)
	if !ok {
		return 0, false
	}
	return a.Ctrl.State, true
}

// recordingLog keeps every tick entry in memory.
type recordingLog struct {
	entries []TickLogEntry
}

func (l *recordingLog) WriteTick(e TickLogEntry) error {
	l.entries = append(l.entries, e)
	return nil
}

func (l *recordingLog) path(r entity.Ref) []ai.State {
	var out []ai.State
	for _, e := range l.entries {
		for _, tr := range e.Transitions {
			if tr.Agent != r {
				continue
			}
			if len(out) == 0 {
				out = append(out, tr.From)
			}
			out = append(out, tr.To)
		}
	}
	return out
}

// checkLines asserts that every line member is alive, in a line-holding
// state, and listed in exactly one line.
func checkLines(t *testing.T, w *World) {
	t.Helper()
	seen := map[entity.Ref]string{}
	w.stations.Each(func(_ entity.Ref, st *Station) bool {
		if st.Line.Len() > st.Line.Capacity() {
			t.Fatalf("tick %d: %s line over capacity: %d", w.CurrentTick(), st.Name, st.Line.Len())
		}
		for _, m := range st.Line.Members() {
			if prev, dup := seen[m]; dup {
				t.Fatalf("tick %d: agent %s in both %s and %s lines", w.CurrentTick(), m, prev, st.Name)
			}
			seen[m] = st.Name
			a, ok := w.agents.Get(m)
			if !ok {
				t.Fatalf("tick %d: %s line holds dead agent %s", w.CurrentTick(), st.Name, m)
			}
			if !a.Ctrl.State.HoldsLine() {
				t.Fatalf("tick %d: agent %s in %s line while %s", w.CurrentTick(), m, st.Name, a.Ctrl.State)
			}
		}
		return true
	})
}
