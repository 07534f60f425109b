package world

import (
	"math"

	"taproom.ai/internal/sim/nav"
)

// travelToward moves a at its speed toward target and reports arrival. A
// path request goes out whenever the goal tile changes; until the answer
// comes back the agent walks straight.
func (w *World) travelToward(a *Agent, target nav.Vec2, dt float64) bool {
	if req, ok := a.Mover.Want(a.Ref, a.Pos.Tile(), target.Tile()); ok {
		if !w.paths.Submit(req) {
			// Queue full: retry on the next tick.
			a.Mover.HasGoal = false
		}
	}
	prev := a.Pos
	pos, reached := a.Mover.Step(a.Pos, target, a.Speed*dt)
	a.Pos = pos
	if pos != prev {
		a.Facing = facingToward(prev, pos)
	}
	return reached
}

func facingToward(from, to nav.Vec2) nav.Dir {
	d := to.Sub(from)
	if math.Abs(d.X) >= math.Abs(d.Y) {
		if d.X >= 0 {
			return nav.East
		}
		return nav.West
	}
	if d.Y >= 0 {
		return nav.South
	}
	return nav.North
}

// pickWanderSpot chooses a reachable tile near a, or a's own tile.
func (w *World) pickWanderSpot(a *Agent) nav.Vec2 {
	if t, ok := w.grid.RandomWalkableNear(w.rnd, a.Pos.Tile(), 3, 16); ok {
		return t.Center()
	}
	return a.Pos
}

// applyPaths hands finished searches to their movers. Answers for goals an
// agent has since abandoned are dropped.
func (w *World) applyPaths() (applied, stale int) {
	for _, resp := range w.paths.Drain() {
		a, ok := w.agents.Get(resp.Agent)
		if !ok || !a.Mover.Apply(resp) {
			stale++
			continue
		}
		applied++
	}
	return applied, stale
}
