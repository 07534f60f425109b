package world

import "taproom.ai/internal/sim/ai"

// floorRewindFraction of the floor timer is given back on every step closer
// to the toilet.
const floorRewindFraction = 0.1

// needsBathroomNow is the pure predicate behind the bathroom override.
func (w *World) needsBathroomNow(a *Agent) bool {
	if !a.Ctrl.Abilities.UseBathroom || a.Order == nil {
		return false
	}
	return a.Order.BladderFill >= w.tun.BladderSize
}

// overrideBathroom redirects every agent that has to go, whatever its
// handler would otherwise do this tick.
func (w *World) overrideBathroom() {
	for _, r := range w.agents.Refs() {
		a, ok := w.agents.Get(r)
		if !ok || !a.Ctrl.State.Overridable() || !w.needsBathroomNow(a) {
			continue
		}
		if next, pending := a.Ctrl.Pending(); pending && next == ai.Bathroom {
			continue
		}
		a.Ctrl.RequestTransition(ai.Bathroom, true)
	}
}

func (w *World) tickBathroom(a *Agent, dt float64) {
	if a.Order == nil {
		a.Ctrl.RequestTransition(ai.Wander, false)
		return
	}
	bs := a.Blocks.Bathroom
	if !w.needsBathroomNow(a) {
		w.finishBathroom(a, bs)
		return
	}
	if !bs.Floor.Initialized {
		bs.Floor.Set(w.tun.FloorTimer)
	}

	if w.gate(a, ai.SiteBathroom, dt, ai.IntervalSearch) {
		if st := w.acquireLine(a, &bs.Line, KindToilet); st != nil {
			step := w.advanceLine(a, &bs.Line, st)
			if step.Improved {
				bs.Floor.Rewind(floorRewindFraction * bs.Floor.Total)
			}
			if step.AtFront && !bs.Using && st.Toilet.Available() {
				st.Toilet.StartUse(a.Ref)
				bs.Use.Set(w.tun.PissTimer)
				bs.Using = true
			}
		}
	}
	w.walkToSpot(a, &bs.Line, dt)

	if bs.Using {
		if bs.Use.Pass(dt) {
			w.note(a, "relieved", "")
			w.finishBathroom(a, bs)
		}
		return
	}
	if bs.Floor.Pass(dt) {
		w.spawnVomit(a)
		w.finishBathroom(a, bs)
	}
}

func (w *World) finishBathroom(a *Agent, bs *BathroomState) {
	if st, ok := w.stations.Get(bs.Line.Station); ok && st.Toilet != nil && st.Toilet.IsUser(a.Ref) {
		st.Toilet.EndUse()
	}
	w.leaveLine(a, &bs.Line)
	bs.Using = false
	if a.Order != nil {
		a.Order.EmptyBladder()
	}
	a.Ctrl.RequestTransition(bs.ReturnTo, false)
}

func (w *World) spawnVomit(a *Agent) {
	tile := a.Pos.Tile()
	if !w.grid.Walkable(tile) {
		tile = a.Mover.Goal
	}
	w.hazards.Insert(Hazard{Tile: tile, Work: w.tun.VomitWork})
	w.totals.Vomits++
	w.note(a, "vomit", "")
}
