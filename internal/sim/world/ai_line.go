package world

import (
	"taproom.ai/internal/sim/world/feature/queue"
)

// acquireLine resolves the station behind ls, or finds and joins a new one
// of kind. It returns nil when no station is available right now.
func (w *World) acquireLine(a *Agent, ls *LineSpot, kind StationKind) *Station {
	if st, ok := w.stations.Get(ls.Station); ok {
		if st.Line.PositionOf(a.Ref) >= 0 {
			return st
		}
		// Dropped from the line (pruned or reset); start over.
	}
	ls.clear()

	st, ok := w.FindBestStation(a, kind)
	if !ok {
		return nil
	}
	if other := w.lineOf(a); other != nil {
		w.logger.Printf("WARN ai: agent=%s already in %s line, skipping tick", a.Ref, other.Name)
		return nil
	}
	if err := ls.Waiter.Join(st.Line, a.Ref); err != nil {
		w.logger.Printf("WARN ai: agent=%s join %s: %v", a.Ref, st.Name, err)
		return nil
	}
	ls.Station = st.Ref
	ls.Spot = st.SpotInFront(ls.Waiter.Slot)
	ls.HasSpot = true
	return st
}

// advanceLine re-reads the authoritative position and walks the spot up.
func (w *World) advanceLine(a *Agent, ls *LineSpot, st *Station) queue.Step {
	step := ls.Waiter.Advance(st.Line, a.Ref)
	if step.Position < 0 {
		ls.clear()
		return step
	}
	ls.Spot = st.SpotInFront(step.Slot)
	ls.HasSpot = true
	a.Facing = facingToward(a.Pos, st.Tile.Center())
	return step
}

func (w *World) leaveLine(a *Agent, ls *LineSpot) {
	if ls == nil {
		return
	}
	if st, ok := w.stations.Get(ls.Station); ok {
		ls.Waiter.Leave(st.Line, a.Ref)
	}
	ls.clear()
}

// walkToSpot integrates movement toward the line spot. Ungated.
func (w *World) walkToSpot(a *Agent, ls *LineSpot, dt float64) bool {
	if !ls.HasSpot {
		return false
	}
	return w.travelToward(a, ls.Spot, dt)
}

// lineOf returns the station whose line currently lists a.
func (w *World) lineOf(a *Agent) *Station {
	for _, r := range w.stations.Refs() {
		st, ok := w.stations.Get(r)
		if ok && st.Line.PositionOf(a.Ref) >= 0 {
			return st
		}
	}
	return nil
}
