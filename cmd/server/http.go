package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"taproom.ai/internal/persistence/indexdb"
	"taproom.ai/internal/sim/world"
	"taproom.ai/internal/transport/observer"
)

func newMux(w *world.World, idx *indexdb.SQLiteIndex, logger *log.Logger, enableAdmin bool) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		resp := struct {
			BarID   string             `json:"bar_id"`
			Metrics world.WorldMetrics `json:"metrics"`
			Index   indexdb.Stats      `json:"index"`
		}{
			BarID:   w.ID(),
			Metrics: w.Metrics(),
			Index:   idx.Stats(),
		}
		_ = json.NewEncoder(rw).Encode(resp)
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writePromMetrics(rw, w.ID(), w.Metrics(), idx.Stats())
	})

	obsSrv := observer.NewServer(w, logger)
	mux.HandleFunc("/v1/observer/bootstrap", obsSrv.BootstrapHandler())
	mux.HandleFunc("/v1/observer/ws", obsSrv.WSHandler())

	if enableAdmin {
		// Local-only admin endpoints.
		mux.HandleFunc("/admin/v1/snapshot", adminOnly(func(rw http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			tick, err := w.RequestSnapshot(ctx)
			writeAdminResult(rw, tick, err)
		}))
		mux.HandleFunc("/admin/v1/close", adminOnly(func(rw http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			tick, err := w.RequestClose(ctx)
			writeAdminResult(rw, tick, err)
		}))
		mux.HandleFunc("/admin/v1/serve", adminOnly(func(rw http.ResponseWriter, r *http.Request) {
			var body struct {
				Register    string   `json:"register"`
				Drink       string   `json:"drink"`
				Ingredients []string `json:"ingredients,omitempty"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(rw, "bad json", http.StatusBadRequest)
				return
			}
			resp := make(chan error, 1)
			if !w.ServeDrink(world.BarRequest{Register: body.Register, Drink: body.Drink, Ingredients: body.Ingredients, Resp: resp}) {
				writeAdminResult(rw, w.CurrentTick(), fmt.Errorf("bar queue full"))
				return
			}
			select {
			case err := <-resp:
				writeAdminResult(rw, w.CurrentTick(), err)
			case <-time.After(5 * time.Second):
				writeAdminResult(rw, w.CurrentTick(), context.DeadlineExceeded)
			case <-r.Context().Done():
			}
		}))
	}
	return mux
}

func adminOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		h(rw, r)
	}
}

func writeAdminResult(rw http.ResponseWriter, tick uint64, err error) {
	rw.Header().Set("Content-Type", "application/json")
	if err != nil {
		rw.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "tick": tick, "error": err.Error()})
		return
	}
	_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "tick": tick})
}

// writePromMetrics renders the minimal Prometheus exposition format.
func writePromMetrics(rw http.ResponseWriter, barID string, m world.WorldMetrics, ix indexdb.Stats) {
	fmt.Fprintf(rw, "# HELP taproom_tick Current bar tick.\n")
	fmt.Fprintf(rw, "# TYPE taproom_tick gauge\n")
	fmt.Fprintf(rw, "taproom_tick{bar=%q} %d\n", barID, m.Tick)

	fmt.Fprintf(rw, "# HELP taproom_agents Agents on the floor.\n")
	fmt.Fprintf(rw, "# TYPE taproom_agents gauge\n")
	fmt.Fprintf(rw, "taproom_agents{bar=%q} %d\n", barID, m.Agents)

	fmt.Fprintf(rw, "# HELP taproom_agents_by_state Agents per behaviour state.\n")
	fmt.Fprintf(rw, "# TYPE taproom_agents_by_state gauge\n")
	for _, k := range sortedKeys(m.States) {
		fmt.Fprintf(rw, "taproom_agents_by_state{bar=%q,state=%q} %d\n", barID, k, m.States[k])
	}

	fmt.Fprintf(rw, "# HELP taproom_line_length Line length per station.\n")
	fmt.Fprintf(rw, "# TYPE taproom_line_length gauge\n")
	for _, k := range sortedKeys(m.Lines) {
		fmt.Fprintf(rw, "taproom_line_length{bar=%q,station=%q} %d\n", barID, k, m.Lines[k])
	}

	fmt.Fprintf(rw, "# HELP taproom_hazards Vomit hazards on the floor.\n")
	fmt.Fprintf(rw, "# TYPE taproom_hazards gauge\n")
	fmt.Fprintf(rw, "taproom_hazards{bar=%q} %d\n", barID, m.Hazards)

	fmt.Fprintf(rw, "# HELP taproom_balance Bank balance.\n")
	fmt.Fprintf(rw, "# TYPE taproom_balance gauge\n")
	fmt.Fprintf(rw, "taproom_balance{bar=%q} %d\n", barID, m.Balance)
	fmt.Fprintf(rw, "taproom_tips{bar=%q} %d\n", barID, m.Tips)

	fmt.Fprintf(rw, "# HELP taproom_round_total Round counters.\n")
	fmt.Fprintf(rw, "# TYPE taproom_round_total counter\n")
	for _, kv := range []struct {
		name string
		v    int
	}{
		{"spawned", m.Totals.Spawned},
		{"departed", m.Totals.Departed},
		{"drinks_sold", m.Totals.DrinksSold},
		{"rejected", m.Totals.Rejected},
		{"vomits", m.Totals.Vomits},
		{"cleaned", m.Totals.Cleaned},
		{"songs_played", m.Totals.SongsPlayed},
		{"tabs_paid", m.Totals.TabsPaid},
	} {
		fmt.Fprintf(rw, "taproom_round_total{bar=%q,counter=%q} %d\n", barID, kv.name, kv.v)
	}

	fmt.Fprintf(rw, "# HELP taproom_queue_depth Channel backlog depth.\n")
	fmt.Fprintf(rw, "# TYPE taproom_queue_depth gauge\n")
	fmt.Fprintf(rw, "taproom_queue_depth{bar=%q,queue=%q} %d\n", barID, "bar", m.QueueDepths.Bar)
	fmt.Fprintf(rw, "taproom_queue_depth{bar=%q,queue=%q} %d\n", barID, "index", ix.QueueDepth)
	fmt.Fprintf(rw, "taproom_observers{bar=%q} %d\n", barID, m.QueueDepths.Observers)

	fmt.Fprintf(rw, "# HELP taproom_index_dropped_total Index writes dropped under backpressure.\n")
	fmt.Fprintf(rw, "# TYPE taproom_index_dropped_total counter\n")
	fmt.Fprintf(rw, "taproom_index_dropped_total{bar=%q,kind=%q} %d\n", barID, "tick", ix.DropTickTotal)
	fmt.Fprintf(rw, "taproom_index_dropped_total{bar=%q,kind=%q} %d\n", barID, "round", ix.DropRoundTotal)
	fmt.Fprintf(rw, "taproom_index_dropped_total{bar=%q,kind=%q} %d\n", barID, "snapshot", ix.DropSnapshotTotal)

	fmt.Fprintf(rw, "# HELP taproom_step_ms Last tick step duration in milliseconds.\n")
	fmt.Fprintf(rw, "# TYPE taproom_step_ms gauge\n")
	fmt.Fprintf(rw, "taproom_step_ms{bar=%q} %.3f\n", barID, m.StepMS)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
