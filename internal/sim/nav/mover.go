package nav

import "taproom.ai/internal/sim/entity"

// ReachRadius is how close an agent must be to count as arrived.
const ReachRadius = 0.05

// Mover follows a path toward the current goal. Until a path arrives for the
// goal it walks straight at the target.
type Mover struct {
	Goal    Tile   `json:"goal"`
	HasGoal bool   `json:"has_goal"`
	Seq     uint64 `json:"seq"`
	Path    []Tile `json:"path,omitempty"`
	Waiting bool   `json:"waiting"`
}

// Want retargets the mover. It returns a request when the goal changed.
func (m *Mover) Want(agent entity.Ref, from, goal Tile) (Request, bool) {
	if m.HasGoal && m.Goal == goal {
		return Request{}, false
	}
	m.Goal = goal
	m.HasGoal = true
	m.Seq++
	m.Path = nil
	m.Waiting = true
	return Request{Agent: agent, Seq: m.Seq, Start: from, Goal: goal}, true
}

// Apply installs a response. Stale responses (older seq or other goal) are
// ignored and reported as false.
func (m *Mover) Apply(r Response) bool {
	if !m.HasGoal || r.Seq != m.Seq || r.Goal != m.Goal {
		return false
	}
	m.Waiting = false
	if !r.OK {
		m.Path = nil
		return true
	}
	m.Path = append(m.Path[:0], r.Path...)
	return true
}

// Step moves pos at most maxDist toward target and reports arrival.
func (m *Mover) Step(pos, target Vec2, maxDist float64) (Vec2, bool) {
	for maxDist > 0 {
		next := target
		viaWaypoint := false
		if len(m.Path) > 1 {
			next = m.Path[0].Center()
			viaWaypoint = true
		}
		d := pos.Dist(next)
		if d <= ReachRadius {
			if viaWaypoint {
				m.Path = m.Path[1:]
				continue
			}
			return pos, true
		}
		if d <= maxDist {
			pos = next
			maxDist -= d
			if viaWaypoint {
				m.Path = m.Path[1:]
				continue
			}
			return pos, true
		}
		pos = pos.Add(next.Sub(pos).Scale(maxDist / d))
		maxDist = 0
	}
	return pos, pos.Dist(target) <= ReachRadius
}

func (m *Mover) Clear() { *m = Mover{Seq: m.Seq} }
