package world

import (
	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/entity"
)

func (w *World) tickCleanVomit(a *Agent, dt float64) {
	if !a.Ctrl.Abilities.CleanVomit {
		return
	}
	cs := a.Blocks.Clean
	ready := w.gate(a, ai.SiteClean, dt, ai.IntervalSearch)

	if h, ok := w.hazards.Get(cs.Hazard); ok {
		if !w.travelToward(a, h.Tile.Center(), dt) {
			return
		}
		h.Work -= dt
		if h.Work <= 0 {
			w.hazards.Remove(cs.Hazard)
			w.totals.Cleaned++
			w.note(a, "cleaned", "")
			cs.Hazard = entity.Nil
		}
		return
	}
	cs.Hazard = entity.Nil

	if ready {
		if ref, ok := w.nearestHazard(a); ok {
			h, _ := w.hazards.Get(ref)
			h.TargetedBy = a.Ref
			cs.Hazard = ref
			cs.HasTarget = false
			return
		}
		if !cs.HasTarget {
			cs.Target = w.pickWanderSpot(a)
			cs.HasTarget = true
			cs.Dwell.Set(w.rnd.Float(1, max(1, w.tun.MaxDwellTime)))
		}
	}
	if !cs.HasTarget {
		return
	}
	if w.travelToward(a, cs.Target, dt) && cs.Dwell.Pass(dt) {
		cs.HasTarget = false
	}
}

// releaseHazard drops a's claim so peers can take over.
func (w *World) releaseHazard(a *Agent) {
	if a.Blocks.Clean == nil {
		return
	}
	if h, ok := w.hazards.Get(a.Blocks.Clean.Hazard); ok && h.TargetedBy == a.Ref {
		h.TargetedBy = entity.Nil
	}
}
