package world

import (
	"sort"

	"taproom.ai/internal/sim/entity"
	"taproom.ai/internal/sim/nav"
)

// standTile is the tile a customer occupies while being served at s.
func (s *Station) standTile() nav.Tile { return nav.InFront(s.Tile, s.Facing, 1) }

// FindBestStation returns the reachable station of kind with spare line
// capacity and the shortest line. Ties go to the older station. Jukeboxes
// last played by the asker are skipped.
func (w *World) FindBestStation(a *Agent, kind StationKind) (*Station, bool) {
	from := a.Pos.Tile()
	var cands []*Station
	w.stations.Each(func(_ entity.Ref, s *Station) bool {
		if s.Kind != kind || !s.Line.HasSpace() {
			return true
		}
		if kind == KindJukebox && s.Jukebox != nil && s.Jukebox.LastCustomer == a.Ref {
			return true
		}
		if !w.grid.Reachable(from, s.standTile()) {
			return true
		}
		cands = append(cands, s)
		return true
	})
	if len(cands) == 0 {
		return nil, false
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Line.Len() < cands[j].Line.Len()
	})
	return cands[0], true
}

// nearestHazard prefers hazards nobody else is walking to, then distance,
// then age.
func (w *World) nearestHazard(a *Agent) (entity.Ref, bool) {
	type cand struct {
		ref     entity.Ref
		claimed bool
		dist    float64
	}
	var cands []cand
	w.hazards.Each(func(r entity.Ref, h *Hazard) bool {
		if !w.grid.Reachable(a.Pos.Tile(), h.Tile) {
			return true
		}
		claimed := !h.TargetedBy.IsNil() && h.TargetedBy != a.Ref && w.agents.Valid(h.TargetedBy)
		cands = append(cands, cand{ref: r, claimed: claimed, dist: a.Pos.Dist(h.Tile.Center())})
		return true
	})
	if len(cands) == 0 {
		return entity.Nil, false
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].claimed != cands[j].claimed {
			return !cands[i].claimed
		}
		return cands[i].dist < cands[j].dist
	})
	return cands[0].ref, true
}
