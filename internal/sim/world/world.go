package world

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"taproom.ai/internal/persistence/snapshot"
	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/catalogs"
	"taproom.ai/internal/sim/entity"
	"taproom.ai/internal/sim/ledger"
	"taproom.ai/internal/sim/nav"
	"taproom.ai/internal/sim/tuning"
	"taproom.ai/internal/sim/world/feature/orders"
	"taproom.ai/internal/sim/world/feature/queue"
)

type WorldConfig struct {
	ID        string
	SessionID string
	Seed      int64

	Tuning tuning.Tuning
	Layout Layout

	// Pathing controls the path worker. Inline keeps everything on the world
	// goroutine for deterministic tests.
	Pathing nav.Options

	OpeningBalance int
	// Spawner turns on the customer spawner and round clock.
	Spawner bool
	// Janitors are staff agents that only clean hazards.
	Janitors int
	// AutoBartenderDelay, when > 0, serves the ordered drink to whoever is
	// waiting at a register front after this many seconds.
	AutoBartenderDelay float64

	Logger *log.Logger
}

// World is a single-threaded authoritative simulation of the bar floor.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg      WorldConfig
	tun      tuning.Tuning
	catalogs *catalogs.Catalogs
	logger   *log.Logger
	rnd      *Random

	tick  atomic.Uint64
	clock float64

	grid       *nav.Grid
	paths      *nav.Service
	maxPathLen int

	agents   *entity.Table[Agent]
	stations *entity.Table[Station]
	items    *entity.Table[Item]
	hazards  *entity.Table[Hazard]
	bank     *ledger.Bank

	round   roundState
	nextNum int

	bartender map[entity.Ref]float64

	// Per-tick records, flushed by stepInternal.
	transitions []TransitionRecord
	notes       []Note

	bar           chan BarRequest
	admin         chan adminReq
	observerJoin  chan ObserverJoinRequest
	observerLeave chan string
	stop          chan struct{}
	stopOnce      sync.Once

	observers map[string]*observerClient

	// Optional side outputs (may be nil). Implemented in internal/persistence/*.
	tickLogger   TickLogger
	index        Indexer
	snapshotSink chan<- snapshot.SnapshotV1

	totals  Totals
	metrics atomic.Value
}

// Totals are round-level counters.
type Totals struct {
	Spawned     int `json:"spawned"`
	Departed    int `json:"departed"`
	DrinksSold  int `json:"drinks_sold"`
	Rejected    int `json:"rejected"`
	Vomits      int `json:"vomits"`
	Cleaned     int `json:"cleaned"`
	SongsPlayed int `json:"songs_played"`
	TabsPaid    int `json:"tabs_paid"`
}

type roundState struct {
	Closed bool `json:"closed"`
	// Over is set once the bar is closed and the last customer has left.
	Over       bool    `json:"over"`
	SpawnTimer float64 `json:"spawn_timer"`
}

var (
	ErrUnknownStation = errors.New("world: unknown station")
	ErrNotRegister    = errors.New("world: station is not a register")
	ErrSlotOccupied   = errors.New("world: register slot occupied")
	ErrUnknownDrink   = errors.New("world: unknown drink")
)

func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	if cats == nil {
		cats = catalogs.Builtin()
	}
	if cfg.Tuning.TickRateHz <= 0 {
		return nil, fmt.Errorf("world: tick_rate_hz must be > 0")
	}
	if cfg.Layout.W == 0 {
		cfg.Layout = DefaultLayout()
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.ID == "" {
		cfg.ID = "bar"
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}

	grid, err := cfg.Layout.buildGrid()
	if err != nil {
		return nil, err
	}

	w := &World{
		cfg:           cfg,
		tun:           cfg.Tuning,
		catalogs:      cats,
		logger:        cfg.Logger,
		rnd:           NewRandom(cfg.Seed),
		grid:          grid,
		agents:        entity.NewTable[Agent](),
		stations:      entity.NewTable[Station](),
		items:         entity.NewTable[Item](),
		hazards:       entity.NewTable[Hazard](),
		bank:          ledger.New(cfg.OpeningBalance),
		bartender:     map[entity.Ref]float64{},
		bar:           make(chan BarRequest, 64),
		admin:         make(chan adminReq, 16),
		observerJoin:  make(chan ObserverJoinRequest, 16),
		observerLeave: make(chan string, 16),
		stop:          make(chan struct{}),
		observers:     map[string]*observerClient{},
	}
	if len(w.drinkMenu()) == 0 {
		return nil, fmt.Errorf("world: no unlocked drink is in the recipe catalog")
	}
	for _, sp := range cfg.Layout.placements() {
		w.addStation(sp.kind, sp.p)
	}
	w.maxPathLen = grid.LongestPath(cfg.Layout.Entrance)
	w.paths = nav.NewService(grid, cfg.Pathing)
	for i := 0; i < cfg.Janitors; i++ {
		w.SpawnAgent(AgentSpec{Name: fmt.Sprintf("janitor-%d", i+1), State: ai.CleanVomit, Abilities: ai.Abilities{CleanVomit: true}})
	}
	w.metrics.Store(WorldMetrics{})
	return w, nil
}

func (w *World) addStation(kind StationKind, p Placement) entity.Ref {
	capacity := w.tun.QueueCapacity
	st := Station{Kind: kind, Name: p.Name, Tile: p.Tile, Facing: p.Facing, Line: queue.NewLine(capacity)}
	switch kind {
	case KindRegister:
		st.Register = &RegisterState{}
	case KindToilet:
		st.Toilet = &ToiletState{UsesRemaining: w.tun.ToiletUses}
	case KindJukebox:
		st.Jukebox = &JukeboxBox{}
	}
	ref := w.stations.Insert(st)
	s, _ := w.stations.Get(ref)
	s.Ref = ref
	return ref
}

// AgentSpec describes an agent to spawn.
type AgentSpec struct {
	Name      string
	State     ai.State
	Abilities ai.Abilities
	// Drink is the first order; empty picks from the menu. Ignored for
	// agents without an order (staff).
	Drink  string
	Orders int
	At     *nav.Tile
}

// SpawnAgent adds an agent at the entrance (or spec.At).
func (w *World) SpawnAgent(spec AgentSpec) entity.Ref {
	w.nextNum++
	if spec.Name == "" {
		spec.Name = fmt.Sprintf("customer-%d", w.nextNum)
	}
	tile := w.cfg.Layout.Entrance
	if spec.At != nil {
		tile = *spec.At
	}
	a := Agent{
		Name:      spec.Name,
		Pos:       tile.Center(),
		Facing:    nav.North,
		Ctrl:      ai.NewController(spec.State, spec.Abilities),
		SpawnTick: w.tick.Load(),
	}
	if spec.State == ai.QueueForRegister || spec.Drink != "" || spec.Orders > 0 {
		drink := spec.Drink
		if drink == "" {
			drink = w.randomDrink()
		}
		n := spec.Orders
		if n <= 0 {
			n = w.rnd.Int(1, max(1, w.tun.MaxNumOrders))
		}
		a.Order = orders.New(drink, n)
	}
	ref := w.agents.Insert(a)
	ag, _ := w.agents.Get(ref)
	ag.Ref = ref
	ag.Blocks.ensure(spec.State)
	ag.Speed = w.rollSpeed(ag)
	w.totals.Spawned++
	return ref
}

func (w *World) drinkMenu() []string { return w.catalogs.Recipes.Available(w.tun.UnlockedDrinks) }

func (w *World) randomDrink() string {
	menu := w.drinkMenu()
	if len(menu) == 0 {
		return ""
	}
	return menu[w.rnd.Intn(len(menu))]
}

// rollSpeed is max(1, base / rand[1, max(1, alcoholic drinks)]).
func (w *World) rollSpeed(a *Agent) float64 {
	drunk := 0
	if a.Order != nil {
		drunk = a.Order.AlcoholicConsumed
	}
	div := w.rnd.Float(1, float64(max(1, drunk)))
	if div < 1 {
		div = 1
	}
	s := w.tun.BaseSpeed / div
	if s < 1 {
		s = 1
	}
	return s
}

func (w *World) rules() orders.Rules {
	return orders.Rules{
		SkipIngredientMatch: w.tun.SkipIngredientMatch,
		LenientSubstitution: w.tun.HasUpgrade(tuning.UpgradeMocktails),
		DrunkTolerance:      w.tun.HasUpgrade(tuning.UpgradeCantEvenTell),
	}
}

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) SessionID() string { return w.cfg.SessionID }

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.tun.TickRateHz
}

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) Tuning() tuning.Tuning { return w.tun }

func (w *World) Bank() *ledger.Bank { return w.bank }

func (w *World) Agent(r entity.Ref) (*Agent, bool) { return w.agents.Get(r) }

func (w *World) Station(r entity.Ref) (*Station, bool) { return w.stations.Get(r) }

func (w *World) StationByName(name string) (*Station, bool) {
	var out *Station
	w.stations.Each(func(_ entity.Ref, s *Station) bool {
		if s.Name == name {
			out = s
			return false
		}
		return true
	})
	return out, out != nil
}

func (w *World) StationRefs() []entity.Ref { return w.stations.Refs() }

func (w *World) AgentRefs() []entity.Ref { return w.agents.Refs() }

func (w *World) HazardCount() int { return w.hazards.Len() }

func (w *World) Closed() bool { return w.round.Closed }

func (w *World) RoundOver() bool { return w.round.Over }

// CloseBar ends the round early. Every agent is sent home after the next commit.
func (w *World) CloseBar() { w.round.Closed = true }

func (w *World) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// Close releases the path worker.
func (w *World) Close() {
	if w.paths != nil {
		w.paths.Close()
	}
}

func (w *World) stepDuration() time.Duration {
	return time.Second / time.Duration(w.TickRateHz())
}
