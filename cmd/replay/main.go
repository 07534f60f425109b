package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"taproom.ai/internal/persistence/indexdb"
	persistlog "taproom.ai/internal/persistence/log"
	"taproom.ai/internal/persistence/snapshot"
	"taproom.ai/internal/sim/catalogs"
	"taproom.ai/internal/sim/ledger"
	"taproom.ai/internal/sim/nav"
	"taproom.ai/internal/sim/tuning"
	"taproom.ai/internal/sim/world"
)

func main() {
	var (
		snapPath  = flag.String("snapshot", "", "path to .snap.zst (optional)")
		barDir    = flag.String("bar", "", "bar data dir containing events/ (optional)")
		configDir = flag.String("configs", "./configs", "config directory")
		session   = flag.String("session", "", "only replay this session id (default: snapshot session, else all)")
		indexPath = flag.String("index", "", "sqlite index to summarize (optional)")
		fromTick  = flag.Uint64("from_tick", 0, "first tick to print (inclusive)")
		toTick    = flag.Uint64("to_tick", 0, "last tick to print (inclusive, 0 = no limit)")
	)
	flag.Parse()

	if *snapPath == "" && *barDir == "" && *indexPath == "" {
		fmt.Fprintln(os.Stderr, "need at least one of -snapshot, -bar, -index")
		os.Exit(2)
	}

	if *snapPath != "" {
		snap, err := snapshot.ReadSnapshot(*snapPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read snapshot:", err)
			os.Exit(1)
		}
		if *session == "" {
			*session = snap.Header.SessionID
		}
		if err := describeSnapshot(os.Stdout, *configDir, snap); err != nil {
			fmt.Fprintln(os.Stderr, "snapshot:", err)
			os.Exit(1)
		}
	}

	if *barDir != "" {
		f := filter{Session: *session, From: *fromTick, To: *toTick}
		rep := newReport()
		err := persistlog.ReadTicks(*barDir, func(e world.TickLogEntry) error {
			if f.keep(e) {
				rep.add(e)
			}
			return nil
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "read events:", err)
			os.Exit(1)
		}
		rep.print(os.Stdout)
	}

	if *indexPath != "" && *session != "" {
		sum, err := indexdb.Summarize(context.Background(), *indexPath, *session)
		if err != nil {
			fmt.Fprintln(os.Stderr, "index:", err)
			os.Exit(1)
		}
		fmt.Printf("index session=%s transitions=%d served=%d rejected=%d vomits=%d deposits=%d tips=%d withdrawals=%d\n",
			sum.SessionID, sum.Transitions, sum.Served, sum.Rejected, sum.Vomits, sum.Deposits, sum.Tips, sum.Withdrawals)
	}
}

// describeSnapshot prints the header and restores the snapshot into a world
// to prove it is loadable.
func describeSnapshot(out io.Writer, configDir string, snap snapshot.SnapshotV1) error {
	fmt.Fprintf(out, "snapshot v%d bar=%s session=%s tick=%d seed=%d agents=%d stations=%d hazards=%d balance=%d tips=%d\n",
		snap.Header.Version, snap.Header.WorldID, snap.Header.SessionID, snap.Header.Tick, snap.Seed,
		len(snap.Agents), len(snap.Stations), len(snap.Hazards), snap.Balance, snap.Tips)

	cats, err := catalogs.Load(configDir)
	if err != nil {
		cats = catalogs.Builtin()
	}
	tune := tuning.Defaults()
	tune.TickRateHz = snap.TickRate
	w, err := world.NewFromSnapshot(world.WorldConfig{
		ID:      snap.Header.WorldID,
		Tuning:  tune,
		Pathing: nav.Options{Inline: true},
	}, cats, snap)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	defer w.Close()
	for _, v := range w.AgentViews() {
		fmt.Fprintf(out, "  %-14s %-28s drink=%-14s remaining=%d patience=%.2f\n", v.Name, v.State, v.Drink, v.Remaining, v.Patience)
	}
	return nil
}

type filter struct {
	Session string
	From    uint64
	To      uint64
}

func (f filter) keep(e world.TickLogEntry) bool {
	if f.Session != "" && e.SessionID != f.Session {
		return false
	}
	if e.Tick < f.From {
		return false
	}
	return f.To == 0 || e.Tick <= f.To
}

type step struct {
	Tick   uint64
	From   string
	To     string
	Forced bool
}

type report struct {
	ticks    int
	names    map[string]string
	timeline map[string][]step
	notes    map[string]int
	ledger   map[ledger.Kind]int
	balance  int
	lastTick uint64
}

func newReport() *report {
	return &report{
		names:    map[string]string{},
		timeline: map[string][]step{},
		notes:    map[string]int{},
		ledger:   map[ledger.Kind]int{},
	}
}

func (r *report) add(e world.TickLogEntry) {
	r.ticks++
	for _, tr := range e.Transitions {
		id := tr.Agent.String()
		r.names[id] = tr.Name
		r.timeline[id] = append(r.timeline[id], step{Tick: e.Tick, From: tr.From.String(), To: tr.To.String(), Forced: tr.Forced})
	}
	for _, n := range e.Notes {
		r.notes[n.Kind]++
	}
	for _, tx := range e.Ledger {
		r.ledger[tx.Kind] += tx.Amount
	}
	r.balance = e.Balance
	r.lastTick = e.Tick
}

func (r *report) print(out io.Writer) {
	fmt.Fprintf(out, "ticks=%d last_tick=%d agents=%d\n", r.ticks, r.lastTick, len(r.timeline))

	ids := make([]string, 0, len(r.timeline))
	for id := range r.timeline {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := r.timeline[ids[i]], r.timeline[ids[j]]
		if a[0].Tick != b[0].Tick {
			return a[0].Tick < b[0].Tick
		}
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		fmt.Fprintf(out, "%s %s\n", id, r.names[id])
		for _, s := range r.timeline[id] {
			mark := ""
			if s.Forced {
				mark = " (forced)"
			}
			fmt.Fprintf(out, "  %6d %s -> %s%s\n", s.Tick, s.From, s.To, mark)
		}
	}

	kinds := make([]string, 0, len(r.notes))
	for k := range r.notes {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(out, "note %s=%d\n", k, r.notes[k])
	}
	fmt.Fprintf(out, "ledger deposit=%d tip=%d withdraw=%d balance=%d\n",
		r.ledger[ledger.KindDeposit], r.ledger[ledger.KindTip], r.ledger[ledger.KindWithdraw], r.balance)
}
