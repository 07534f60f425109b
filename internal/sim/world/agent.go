package world

import (
	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/entity"
	"taproom.ai/internal/sim/nav"
	"taproom.ai/internal/sim/world/feature/orders"
	"taproom.ai/internal/sim/world/feature/queue"
)

type Agent struct {
	Ref    entity.Ref `json:"ref"`
	Name   string     `json:"name"`
	Pos    nav.Vec2   `json:"pos"`
	Facing nav.Dir    `json:"facing"`
	Speed  float64    `json:"speed"`

	Ctrl  ai.Controller `json:"-"`
	Gate  ai.Gate       `json:"-"`
	Mover nav.Mover     `json:"-"`

	// Order is nil for agents that never take orders (staff).
	Order    *orders.Order `json:"order,omitempty"`
	Held     entity.Ref    `json:"held"`
	Patience Patience      `json:"patience"`

	SpawnTick uint64 `json:"spawn_tick"`
	// AtExit is set once a leaving agent reaches the door.
	AtExit bool `json:"at_exit"`

	Blocks Blocks `json:"blocks"`
}

// Patience drains while the customer stands at the register front.
type Patience struct {
	Enabled   bool    `json:"enabled"`
	Remaining float64 `json:"remaining"`
	Max       float64 `json:"max"`
}

func (p *Patience) Enable(max float64) {
	if p.Enabled {
		return
	}
	p.Enabled = true
	p.Max = max
	p.Remaining = max
}

func (p *Patience) Disable() { *p = Patience{} }

func (p *Patience) Pass(dt float64) {
	if !p.Enabled {
		return
	}
	p.Remaining -= dt
	if p.Remaining < 0 {
		p.Remaining = 0
	}
}

func (p Patience) Pct() float64 {
	if !p.Enabled || p.Max <= 0 {
		return 0
	}
	return p.Remaining / p.Max
}

// LineSpot is a line membership plus the floor spot the agent walks to.
type LineSpot struct {
	Station entity.Ref   `json:"station"`
	Waiter  queue.Waiter `json:"waiter"`
	Spot    nav.Vec2     `json:"spot"`
	HasSpot bool         `json:"has_spot"`
}

func newLineSpot() LineSpot { return LineSpot{Waiter: queue.NewWaiter()} }

func (ls *LineSpot) clear() { *ls = newLineSpot() }

type WanderState struct {
	Target    nav.Vec2 `json:"target"`
	HasTarget bool     `json:"has_target"`
	Dwell     ai.Timer `json:"dwell"`
}

// QueueState serves QueueForRegister and AtRegisterWaitForDrink.
type QueueState struct {
	Line LineSpot `json:"line"`
}

type DrinkState struct {
	Target    nav.Vec2 `json:"target"`
	HasTarget bool     `json:"has_target"`
	Timer     ai.Timer `json:"timer"`
}

type PayState struct {
	Line  LineSpot `json:"line"`
	Timer ai.Timer `json:"timer"`
}

type JukeboxState struct {
	Line  LineSpot `json:"line"`
	Timer ai.Timer `json:"timer"`
}

type BathroomState struct {
	Line     LineSpot `json:"line"`
	Floor    ai.Timer `json:"floor"`
	Use      ai.Timer `json:"use"`
	Using    bool     `json:"using"`
	ReturnTo ai.State `json:"return_to"`
}

type CleanState struct {
	Hazard    entity.Ref `json:"hazard"`
	Target    nav.Vec2   `json:"target"`
	HasTarget bool       `json:"has_target"`
	Dwell     ai.Timer   `json:"dwell"`
}

// Blocks holds the per-activity scratch data. Exactly one field is non-nil,
// the one belonging to the agent's current state (Leave has none).
type Blocks struct {
	Wander   *WanderState   `json:"wander,omitempty"`
	Queue    *QueueState    `json:"queue,omitempty"`
	Drink    *DrinkState    `json:"drink,omitempty"`
	Pay      *PayState      `json:"pay,omitempty"`
	Jukebox  *JukeboxState  `json:"jukebox,omitempty"`
	Bathroom *BathroomState `json:"bathroom,omitempty"`
	Clean    *CleanState    `json:"clean,omitempty"`
}

// reset drops every block and creates the one for to. The register queue
// entry survives QueueForRegister -> AtRegisterWaitForDrink.
func (b *Blocks) reset(from, to ai.State) {
	carried := b.Queue
	*b = Blocks{}
	if from == ai.QueueForRegister && to == ai.AtRegisterWaitForDrink && carried != nil {
		b.Queue = carried
		return
	}
	b.ensure(to)
}

// ensure lazily creates the block for s.
func (b *Blocks) ensure(s ai.State) {
	switch s {
	case ai.Wander:
		if b.Wander == nil {
			b.Wander = &WanderState{}
		}
	case ai.QueueForRegister, ai.AtRegisterWaitForDrink:
		if b.Queue == nil {
			b.Queue = &QueueState{Line: newLineSpot()}
		}
	case ai.Drinking:
		if b.Drink == nil {
			b.Drink = &DrinkState{}
		}
	case ai.Pay:
		if b.Pay == nil {
			b.Pay = &PayState{Line: newLineSpot()}
		}
	case ai.PlayJukebox:
		if b.Jukebox == nil {
			b.Jukebox = &JukeboxState{Line: newLineSpot()}
		}
	case ai.Bathroom:
		if b.Bathroom == nil {
			b.Bathroom = &BathroomState{Line: newLineSpot()}
		}
	case ai.CleanVomit:
		if b.Clean == nil {
			b.Clean = &CleanState{}
		}
	}
}

// line returns the line membership held by the block of s, if any.
func (b *Blocks) line(s ai.State) *LineSpot {
	switch s {
	case ai.QueueForRegister, ai.AtRegisterWaitForDrink:
		if b.Queue != nil {
			return &b.Queue.Line
		}
	case ai.Pay:
		if b.Pay != nil {
			return &b.Pay.Line
		}
	case ai.PlayJukebox:
		if b.Jukebox != nil {
			return &b.Jukebox.Line
		}
	case ai.Bathroom:
		if b.Bathroom != nil {
			return &b.Bathroom.Line
		}
	}
	return nil
}
