package world

import (
	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/entity"
)

// TransitionRecord is one committed state change.
type TransitionRecord struct {
	Tick   uint64     `json:"tick"`
	Agent  entity.Ref `json:"agent"`
	Name   string     `json:"name"`
	From   ai.State   `json:"from"`
	To     ai.State   `json:"to"`
	Forced bool       `json:"forced,omitempty"`
}

// Note is a notable thing an agent did this tick (served, paid, vomit...).
type Note struct {
	Tick   uint64     `json:"tick"`
	Agent  entity.Ref `json:"agent"`
	Kind   string     `json:"kind"`
	Detail string     `json:"detail,omitempty"`
}

func (w *World) note(a *Agent, kind, detail string) {
	w.notes = append(w.notes, Note{Tick: w.tick.Load(), Agent: a.Ref, Kind: kind, Detail: detail})
}

func (w *World) gate(a *Agent, site ai.Site, dt, interval float64) bool {
	return a.Gate.Ready(site, dt, interval)
}

// setupStates prepares transient blocks for agents whose state changed at
// the previous commit.
func (w *World) setupStates() {
	w.agents.Each(func(_ entity.Ref, a *Agent) bool {
		if !a.Ctrl.NeedsReset() {
			return true
		}
		a.Blocks.ensure(a.Ctrl.State)
		a.Gate.Reset()
		a.Ctrl.ClearReset()
		return true
	})
}

// runHandlers invokes the handler of every agent that is free to act.
func (w *World) runHandlers(dt float64) {
	w.agents.Each(func(_ entity.Ref, a *Agent) bool {
		if !a.Ctrl.Active() {
			return true
		}
		w.dispatch(a, dt)
		return true
	})
}

func (w *World) dispatch(a *Agent, dt float64) {
	switch a.Ctrl.State {
	case ai.Wander:
		w.tickWander(a, dt)
	case ai.QueueForRegister:
		w.tickQueueForRegister(a, dt)
	case ai.AtRegisterWaitForDrink:
		w.tickAtRegister(a, dt)
	case ai.Drinking:
		w.tickDrinking(a, dt)
	case ai.Pay:
		w.tickPay(a, dt)
	case ai.PlayJukebox:
		w.tickJukebox(a, dt)
	case ai.Bathroom:
		w.tickBathroom(a, dt)
	case ai.CleanVomit:
		w.tickCleanVomit(a, dt)
	case ai.Leave:
		w.tickLeave(a, dt)
	default:
		w.logger.Printf("ERROR ai: agent=%s in unknown state %d, skipping", a.Ref, a.Ctrl.State)
	}
}

// commitTransitions is the single boundary where requested states become
// visible. Exit cleanup for the old state runs here so no line entry
// outlives the state that owned it.
func (w *World) commitTransitions() {
	tick := w.tick.Load()
	w.agents.Each(func(_ entity.Ref, a *Agent) bool {
		from, to, ok := a.Ctrl.Commit()
		if !ok {
			return true
		}
		w.exitState(a, from, to)
		a.Blocks.reset(from, to)
		if to == ai.Bathroom {
			a.Blocks.Bathroom.ReturnTo = from
		}
		w.transitions = append(w.transitions, TransitionRecord{Tick: tick, Agent: a.Ref, Name: a.Name, From: from, To: to})
		return true
	})
}

// forceLeave sends everyone home once the bar has closed.
func (w *World) forceLeave() {
	if !w.round.Closed {
		return
	}
	tick := w.tick.Load()
	w.agents.Each(func(_ entity.Ref, a *Agent) bool {
		from := a.Ctrl.State
		if from == ai.Leave {
			return true
		}
		w.exitState(a, from, ai.Leave)
		if _, changed := a.Ctrl.Force(ai.Leave); !changed {
			return true
		}
		a.Blocks.reset(from, ai.Leave)
		w.transitions = append(w.transitions, TransitionRecord{Tick: tick, Agent: a.Ref, Name: a.Name, From: from, To: ai.Leave, Forced: true})
		return true
	})
}

func (w *World) exitState(a *Agent, from, to ai.State) {
	keepLine := from == ai.QueueForRegister && to == ai.AtRegisterWaitForDrink
	if from.HoldsLine() && !keepLine {
		w.leaveLine(a, a.Blocks.line(from))
	}
	switch from {
	case ai.AtRegisterWaitForDrink:
		if to != ai.Drinking {
			a.Patience.Disable()
		}
	case ai.Bathroom:
		if bs := a.Blocks.Bathroom; bs != nil {
			if st, ok := w.stations.Get(bs.Line.Station); ok && st.Toilet != nil && st.Toilet.IsUser(a.Ref) {
				st.Toilet.EndUse()
			}
		}
	case ai.CleanVomit:
		w.releaseHazard(a)
	}
	// An entry surviving its state is a bug; log it and repair membership.
	if !keepLine {
		if st := w.lineOf(a); st != nil {
			w.logger.Printf("WARN ai: agent=%s left %s with a %s line entry; removing", a.Ref, from, st.Name)
			st.Line.Leave(a.Ref)
		}
	}
	a.Mover.Clear()
}
