// Package nav provides the walkable floor grid, A* search, an asynchronous
// path worker and a per-agent path follower.
package nav

import "math"

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64  { return v.Sub(o).Len() }
func (v Vec2) Tile() Tile           { return Tile{int(math.Floor(v.X)), int(math.Floor(v.Y))} }

type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (t Tile) Center() Vec2         { return Vec2{float64(t.X) + 0.5, float64(t.Y) + 0.5} }
func (t Tile) Add(o Tile) Tile      { return Tile{t.X + o.X, t.Y + o.Y} }
func (t Tile) Manhattan(o Tile) int { return abs(t.X-o.X) + abs(t.Y-o.Y) }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type Dir uint8

const (
	North Dir = iota
	East
	South
	West
)

func (d Dir) Offset() Tile {
	switch d {
	case North:
		return Tile{0, -1}
	case East:
		return Tile{1, 0}
	case South:
		return Tile{0, 1}
	default:
		return Tile{-1, 0}
	}
}

func (d Dir) String() string {
	return [...]string{"N", "E", "S", "W"}[d&3]
}

// InFront returns the tile n steps in front of t when facing d.
func InFront(t Tile, d Dir, n int) Tile {
	o := d.Offset()
	return Tile{t.X + o.X*n, t.Y + o.Y*n}
}

var neighbours = [4]Tile{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
