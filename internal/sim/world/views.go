package world

import (
	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/entity"
	"taproom.ai/internal/sim/nav"
)

// AgentView is a copy of the parts of an agent worth showing outside the
// world loop.
type AgentView struct {
	Ref       entity.Ref `json:"ref"`
	Name      string     `json:"name"`
	Pos       nav.Vec2   `json:"pos"`
	State     ai.State   `json:"state"`
	Drink     string     `json:"drink,omitempty"`
	Remaining int        `json:"remaining,omitempty"`
	Patience  float64    `json:"patience,omitempty"`
	Holding   string     `json:"holding,omitempty"`
	Line      string     `json:"line,omitempty"`
	LinePos   int        `json:"line_pos"`
}

// AgentViews lists agents in creation order. World-loop goroutine only.
func (w *World) AgentViews() []AgentView {
	out := make([]AgentView, 0, w.agents.Len())
	w.agents.Each(func(r entity.Ref, a *Agent) bool {
		v := AgentView{Ref: r, Name: a.Name, Pos: a.Pos, State: a.Ctrl.State, Patience: a.Patience.Pct(), LinePos: -1}
		if a.Order != nil {
			v.Drink = a.Order.Drink
			v.Remaining = a.Order.Remaining
		}
		if it, ok := w.items.Get(a.Held); ok {
			v.Holding = it.Drink
		}
		if st := w.lineOf(a); st != nil {
			v.Line = st.Name
			v.LinePos = st.Line.PositionOf(r)
		}
		out = append(out, v)
		return true
	})
	return out
}
