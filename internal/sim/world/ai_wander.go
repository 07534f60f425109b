package world

import "taproom.ai/internal/sim/ai"

// wanderPause sends a on a short detour and back to resume.
func (w *World) wanderPause(a *Agent, resume ai.State) {
	a.Ctrl.Resume = resume
	a.Ctrl.RequestTransition(ai.Wander, false)
}

func (w *World) tickWander(a *Agent, dt float64) {
	ws := a.Blocks.Wander
	if w.gate(a, ai.SiteWander, dt, ai.IntervalIdle) && !ws.HasTarget {
		maxDwell := w.tun.MaxDwellTime
		if maxDwell < 1 {
			maxDwell = 1
		}
		ws.Dwell.Set(w.rnd.Float(1, maxDwell))
		ws.Target = w.pickWanderSpot(a)
		ws.HasTarget = true
	}
	if !ws.HasTarget {
		return
	}
	if !w.travelToward(a, ws.Target, dt) {
		return
	}
	if !ws.Dwell.Pass(dt) {
		return
	}
	ws.HasTarget = false
	a.Ctrl.RequestTransition(a.Ctrl.Resume, false)
}
