package world

import (
	"fmt"

	"taproom.ai/internal/sim/nav"
)

type Placement struct {
	Name   string   `json:"name" yaml:"name"`
	Tile   nav.Tile `json:"tile" yaml:"tile"`
	Facing nav.Dir  `json:"facing" yaml:"facing"`
}

// Layout is the static floor plan of the bar.
type Layout struct {
	W         int         `json:"w"`
	H         int         `json:"h"`
	Walls     []nav.Tile  `json:"walls,omitempty"`
	Entrance  nav.Tile    `json:"entrance"`
	Exit      nav.Tile    `json:"exit"`
	Registers []Placement `json:"registers"`
	Toilets   []Placement `json:"toilets"`
	Jukeboxes []Placement `json:"jukeboxes"`
}

// DefaultLayout is a 16x12 room: bar counter along the top row with two
// registers, a toilet in the corner, a jukebox on the east wall.
func DefaultLayout() Layout {
	l := Layout{
		W:        16,
		H:        12,
		Entrance: nav.Tile{X: 8, Y: 11},
		Exit:     nav.Tile{X: 8, Y: 11},
		Registers: []Placement{
			{Name: "register-1", Tile: nav.Tile{X: 5, Y: 0}, Facing: nav.South},
			{Name: "register-2", Tile: nav.Tile{X: 10, Y: 0}, Facing: nav.South},
		},
		Toilets: []Placement{
			{Name: "toilet-1", Tile: nav.Tile{X: 1, Y: 10}, Facing: nav.North},
		},
		Jukeboxes: []Placement{
			{Name: "jukebox-1", Tile: nav.Tile{X: 15, Y: 6}, Facing: nav.West},
		},
	}
	for x := 0; x < l.W; x++ {
		if x == 5 || x == 10 {
			continue
		}
		l.Walls = append(l.Walls, nav.Tile{X: x, Y: 0})
	}
	return l
}

type stationPlacement struct {
	kind StationKind
	p    Placement
}

func (l Layout) placements() []stationPlacement {
	var out []stationPlacement
	for _, p := range l.Registers {
		out = append(out, stationPlacement{KindRegister, p})
	}
	for _, p := range l.Toilets {
		out = append(out, stationPlacement{KindToilet, p})
	}
	for _, p := range l.Jukeboxes {
		out = append(out, stationPlacement{KindJukebox, p})
	}
	return out
}

// buildGrid blocks walls and station tiles.
func (l Layout) buildGrid() (*nav.Grid, error) {
	if l.W <= 0 || l.H <= 0 {
		return nil, fmt.Errorf("layout: bad size %dx%d", l.W, l.H)
	}
	g := nav.NewGrid(l.W, l.H)
	for _, t := range l.Walls {
		g.SetBlocked(t, true)
	}
	for _, sp := range l.placements() {
		if !g.InBounds(sp.p.Tile) {
			return nil, fmt.Errorf("layout: %s %q out of bounds at %v", sp.kind, sp.p.Name, sp.p.Tile)
		}
		g.SetBlocked(sp.p.Tile, true)
	}
	if !g.Walkable(l.Entrance) {
		return nil, fmt.Errorf("layout: entrance %v not walkable", l.Entrance)
	}
	if !g.Walkable(l.Exit) {
		return nil, fmt.Errorf("layout: exit %v not walkable", l.Exit)
	}
	return g, nil
}
