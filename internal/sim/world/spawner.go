package world

import (
	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/entity"
)

// stepRound advances the round clock, spawns customers while the bar is open
// and closes it when the round runs out.
func (w *World) stepRound(dt float64) {
	w.clock += dt
	if !w.cfg.Spawner {
		return
	}
	if !w.round.Closed && w.tun.RoundLengthSeconds > 0 && w.clock >= w.tun.RoundLengthSeconds {
		w.round.Closed = true
		w.logger.Printf("round: closed session=%s clock=%.1fs", w.cfg.SessionID, w.clock)
	}
	if w.round.Closed {
		return
	}
	w.round.SpawnTimer -= dt
	if w.round.SpawnTimer > 0 {
		return
	}
	w.round.SpawnTimer = w.tun.SpawnEverySeconds
	if w.customerCount() >= w.tun.MaxCustomers {
		return
	}
	w.SpawnAgent(AgentSpec{State: ai.QueueForRegister, Abilities: ai.AllAbilities()})
}

// stepRoundOver reports whether the round finished during this tick.
func (w *World) stepRoundOver() bool {
	if w.round.Over || !w.round.Closed || w.customerCount() > 0 {
		return false
	}
	w.round.Over = true
	w.logger.Printf("round: over session=%s clock=%.1fs balance=%d tips=%d", w.cfg.SessionID, w.clock, w.bank.Balance(), w.bank.Tips())
	return true
}

func (w *World) customerCount() int {
	n := 0
	w.agents.Each(func(_ entity.Ref, a *Agent) bool {
		if a.Order != nil {
			n++
		}
		return true
	})
	return n
}

// despawn removes agents that made it out the door, along with anything
// they were still holding.
func (w *World) despawn() int {
	n := 0
	for _, r := range w.agents.Refs() {
		a, ok := w.agents.Get(r)
		if !ok || !a.AtExit {
			continue
		}
		if !a.Held.IsNil() {
			w.items.Remove(a.Held)
		}
		if st := w.lineOf(a); st != nil {
			st.Line.Leave(a.Ref)
		}
		w.agents.Remove(r)
		w.totals.Departed++
		n++
	}
	return n
}

// pruneLines drops refs of agents that no longer exist.
func (w *World) pruneLines() {
	w.stations.Each(func(_ entity.Ref, s *Station) bool {
		s.Line.Prune(w.agents.Valid)
		return true
	})
}
