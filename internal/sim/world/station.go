package world

import (
	"taproom.ai/internal/sim/entity"
	"taproom.ai/internal/sim/nav"
	"taproom.ai/internal/sim/world/feature/orders"
	"taproom.ai/internal/sim/world/feature/queue"
)

type StationKind uint8

const (
	KindRegister StationKind = iota
	KindToilet
	KindJukebox
)

func (k StationKind) String() string {
	switch k {
	case KindRegister:
		return "register"
	case KindToilet:
		return "toilet"
	case KindJukebox:
		return "jukebox"
	}
	return "unknown"
}

type Station struct {
	Ref    entity.Ref  `json:"ref"`
	Kind   StationKind `json:"kind"`
	Name   string      `json:"name"`
	Tile   nav.Tile    `json:"tile"`
	Facing nav.Dir     `json:"facing"`
	Line   *queue.Line `json:"-"`

	Register *RegisterState `json:"register,omitempty"`
	Toilet   *ToiletState   `json:"toilet,omitempty"`
	Jukebox  *JukeboxBox    `json:"jukebox,omitempty"`
}

// RegisterState holds the served drink waiting for pickup.
type RegisterState struct {
	Slot entity.Ref `json:"slot"`
}

type ToiletState struct {
	Occupied      bool       `json:"occupied"`
	User          entity.Ref `json:"user"`
	UsesRemaining int        `json:"uses_remaining"`
}

func (t *ToiletState) Available() bool { return !t.Occupied && t.UsesRemaining > 0 }

func (t *ToiletState) IsUser(r entity.Ref) bool { return t.Occupied && t.User == r }

func (t *ToiletState) StartUse(r entity.Ref) {
	t.Occupied = true
	t.User = r
}

func (t *ToiletState) EndUse() {
	if !t.Occupied {
		return
	}
	t.Occupied = false
	t.User = entity.Nil
	if t.UsesRemaining > 0 {
		t.UsesRemaining--
	}
}

type JukeboxBox struct {
	LastCustomer entity.Ref `json:"last_customer"`
}

// SpotInFront is the centre of the tile n steps in front of the station.
func (s *Station) SpotInFront(n int) nav.Vec2 {
	return nav.InFront(s.Tile, s.Facing, n).Center()
}

// Item is a drink somewhere in the bar: on a register or in a hand.
type Item struct {
	Drink       string               `json:"drink"`
	Ingredients orders.IngredientSet `json:"ingredients"`
	Register    entity.Ref           `json:"register"`
	Holder      entity.Ref           `json:"holder"`
}

// IsDrink reports whether the item carries anything drinkable.
func (it *Item) IsDrink() bool { return !it.Ingredients.Empty() }

// Hazard is a vomit puddle. Work is the cleaning time left.
type Hazard struct {
	Tile       nav.Tile   `json:"tile"`
	Work       float64    `json:"work"`
	TargetedBy entity.Ref `json:"targeted_by"`
}
