package nav

import "container/heap"

// Intner is the slice of a random source that tile picking needs.
type Intner interface {
	Intn(n int) int
}

// Grid is a rectangular floor. Tiles are walkable unless blocked.
type Grid struct {
	W, H    int
	blocked []bool

	labels []int32
	dirty  bool
}

func NewGrid(w, h int) *Grid {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Grid{W: w, H: h, blocked: make([]bool, w*h), dirty: true}
}

func (g *Grid) idx(t Tile) int       { return t.Y*g.W + t.X }
func (g *Grid) InBounds(t Tile) bool { return t.X >= 0 && t.Y >= 0 && t.X < g.W && t.Y < g.H }

func (g *Grid) Walkable(t Tile) bool { return g.InBounds(t) && !g.blocked[g.idx(t)] }

func (g *Grid) SetBlocked(t Tile, b bool) {
	if !g.InBounds(t) {
		return
	}
	if g.blocked[g.idx(t)] != b {
		g.blocked[g.idx(t)] = b
		g.dirty = true
	}
}

// Clone returns an independent copy safe to hand to another goroutine.
func (g *Grid) Clone() *Grid {
	c := &Grid{W: g.W, H: g.H, blocked: make([]bool, len(g.blocked)), dirty: true}
	copy(c.blocked, g.blocked)
	return c
}

func (g *Grid) relabel() {
	g.labels = make([]int32, len(g.blocked))
	var next int32
	queue := make([]Tile, 0, 64)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			start := Tile{x, y}
			if !g.Walkable(start) || g.labels[g.idx(start)] != 0 {
				continue
			}
			next++
			g.labels[g.idx(start)] = next
			queue = append(queue[:0], start)
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				for _, d := range neighbours {
					n := cur.Add(d)
					if g.Walkable(n) && g.labels[g.idx(n)] == 0 {
						g.labels[g.idx(n)] = next
						queue = append(queue, n)
					}
				}
			}
		}
	}
	g.dirty = false
}

// Reachable reports whether a walkable path joins a and b.
func (g *Grid) Reachable(a, b Tile) bool {
	if !g.Walkable(a) || !g.Walkable(b) {
		return false
	}
	if g.dirty {
		g.relabel()
	}
	return g.labels[g.idx(a)] == g.labels[g.idx(b)]
}

type pqItem struct {
	t Tile
	f int
	n int
}

type pq []pqItem

func (p pq) Len() int { return len(p) }
func (p pq) Less(i, j int) bool {
	if p[i].f != p[j].f {
		return p[i].f < p[j].f
	}
	return p[i].n < p[j].n
}
func (p pq) Swap(i, j int) { p[i], p[j] = p[j], p[i] }
func (p *pq) Push(x any)   { *p = append(*p, x.(pqItem)) }
func (p *pq) Pop() any {
	old := *p
	it := old[len(old)-1]
	*p = old[:len(old)-1]
	return it
}

// FindPath runs 4-connected A*. The path includes start and goal.
func (g *Grid) FindPath(start, goal Tile) ([]Tile, bool) {
	if !g.Reachable(start, goal) {
		return nil, false
	}
	if start == goal {
		return []Tile{start}, true
	}
	n := len(g.blocked)
	gScore := make([]int, n)
	for i := range gScore {
		gScore[i] = -1
	}
	from := make([]int, n)
	closed := make([]bool, n)
	open := &pq{}
	seq := 0
	gScore[g.idx(start)] = 0
	from[g.idx(start)] = -1
	heap.Push(open, pqItem{t: start, f: start.Manhattan(goal), n: seq})

	for open.Len() > 0 {
		cur := heap.Pop(open).(pqItem).t
		ci := g.idx(cur)
		if closed[ci] {
			continue
		}
		if cur == goal {
			break
		}
		closed[ci] = true
		for _, d := range neighbours {
			nt := cur.Add(d)
			if !g.Walkable(nt) {
				continue
			}
			ni := g.idx(nt)
			cost := gScore[ci] + 1
			if gScore[ni] >= 0 && cost >= gScore[ni] {
				continue
			}
			gScore[ni] = cost
			from[ni] = ci
			seq++
			heap.Push(open, pqItem{t: nt, f: cost + nt.Manhattan(goal), n: seq})
		}
	}
	gi := g.idx(goal)
	if gScore[gi] < 0 {
		return nil, false
	}
	var rev []Tile
	for i := gi; i >= 0; i = from[i] {
		rev = append(rev, Tile{i % g.W, i / g.W})
	}
	path := make([]Tile, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path, true
}

// RandomWalkableNear picks a walkable tile reachable from origin within
// radius (Chebyshev).
func (g *Grid) RandomWalkableNear(rnd Intner, origin Tile, radius, attempts int) (Tile, bool) {
	if radius < 1 {
		radius = 1
	}
	for i := 0; i < attempts; i++ {
		t := Tile{
			X: origin.X + rnd.Intn(2*radius+1) - radius,
			Y: origin.Y + rnd.Intn(2*radius+1) - radius,
		}
		if g.Reachable(origin, t) {
			return t, true
		}
	}
	return Tile{}, false
}

// LongestPath is the largest shortest-path length (in tiles) from origin to
// any reachable tile.
func (g *Grid) LongestPath(origin Tile) int {
	if !g.Walkable(origin) {
		return 0
	}
	dist := make([]int, len(g.blocked))
	for i := range dist {
		dist[i] = -1
	}
	dist[g.idx(origin)] = 0
	queue := []Tile{origin}
	best := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := dist[g.idx(cur)]
		if d > best {
			best = d
		}
		for _, o := range neighbours {
			n := cur.Add(o)
			if g.Walkable(n) && dist[g.idx(n)] < 0 {
				dist[g.idx(n)] = d + 1
				queue = append(queue, n)
			}
		}
	}
	return best
}
