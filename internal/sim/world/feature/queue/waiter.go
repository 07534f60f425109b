package queue

import "taproom.ai/internal/sim/entity"

// Waiter is the agent-side view of one line membership. It lives in the
// agent's transient state block and is thrown away when the state resets.
type Waiter struct {
	Joined    bool `json:"joined"`
	Index     int  `json:"index"`
	PrevIndex int  `json:"prev_index"`
	// Slot is how many tiles in front of the station the agent stands.
	Slot    int  `json:"slot"`
	AtFront bool `json:"at_front"`
}

func NewWaiter() Waiter { return Waiter{Index: -1, PrevIndex: -1} }

func (w *Waiter) Reset() { *w = NewWaiter() }

// Step describes one Advance call.
type Step struct {
	Position int
	Slot     int
	// Improved is set when the position got smaller since the last Advance.
	Improved bool
	AtFront  bool
	// JustReachedFront is true only on the first Advance at the front.
	JustReachedFront bool
}

// Join enters r at the back of l. The agent should walk to Slot tiles in
// front of the station (one past everyone already waiting).
func (w *Waiter) Join(l *Line, r entity.Ref) error {
	pos, err := l.Join(r)
	if err != nil {
		return err
	}
	w.Joined = true
	w.Index = pos
	w.PrevIndex = -1
	w.Slot = pos + 1
	w.AtFront = false
	return nil
}

// Advance re-reads the authoritative position and moves the target slot at
// most one tile closer. Position -1 means r is no longer in l.
func (w *Waiter) Advance(l *Line, r entity.Ref) Step {
	pos := l.PositionOf(r)
	if pos < 0 {
		w.Joined = false
		w.Index = -1
		return Step{Position: -1}
	}
	w.PrevIndex = w.Index
	w.Index = pos
	st := Step{Position: pos, Improved: w.PrevIndex >= 0 && pos < w.PrevIndex}

	if pos > 0 {
		want := pos + 1
		if w.Slot > want {
			w.Slot--
		} else if w.Slot < want {
			w.Slot = want
		}
		st.Slot = w.Slot
		return st
	}

	w.Slot = 1
	st.Slot = 1
	st.AtFront = true
	if !w.AtFront {
		w.AtFront = true
		st.JustReachedFront = true
	}
	return st
}

func (w *Waiter) Leave(l *Line, r entity.Ref) bool {
	ok := l.Leave(r)
	w.Reset()
	return ok
}
