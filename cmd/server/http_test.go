package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/catalogs"
	"taproom.ai/internal/sim/nav"
	"taproom.ai/internal/sim/tuning"
	"taproom.ai/internal/sim/world"
)

func newTestServer(t *testing.T, enableAdmin bool) (*world.World, *httptest.Server) {
	t.Helper()
	w, err := world.New(world.WorldConfig{
		ID:             "bar",
		Seed:           3,
		Tuning:         tuning.Defaults(),
		Pathing:        nav.Options{Inline: true},
		OpeningBalance: 100,
	}, catalogs.Builtin())
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	w.SpawnAgent(world.AgentSpec{Name: "alice", State: ai.QueueForRegister, Drink: "coke", Orders: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()
	srv := httptest.NewServer(newMux(w, nil, nil, enableAdmin))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return w, srv
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMetricsJSON(t *testing.T) {
	w, srv := newTestServer(t, false)
	waitFor(t, "first tick", func() bool { return w.Metrics().Tick > 0 })

	res, err := http.Get(srv.URL + "/v1/metrics")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	var body struct {
		BarID   string             `json:"bar_id"`
		Metrics world.WorldMetrics `json:"metrics"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.BarID != "bar" || body.Metrics.Agents != 1 || body.Metrics.Balance != 100 {
		t.Fatalf("metrics mismatch: %+v", body)
	}
}

func TestPromMetrics(t *testing.T) {
	w, srv := newTestServer(t, false)
	waitFor(t, "first tick", func() bool { return w.Metrics().Tick > 0 })

	res, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	b, _ := io.ReadAll(res.Body)
	text := string(b)
	for _, want := range []string{
		`taproom_agents{bar="bar"} 1`,
		`taproom_balance{bar="bar"} 100`,
		`taproom_line_length{bar="bar",station="toilet-1"} 0`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in:\n%s", want, text)
		}
	}
}

func TestAdmin_ServeAndClose(t *testing.T) {
	w, srv := newTestServer(t, true)
	waitFor(t, "alice at register", func() bool {
		return w.Metrics().States[ai.AtRegisterWaitForDrink.String()] == 1
	})

	post := func(path, body string) (int, map[string]any) {
		t.Helper()
		res, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		defer res.Body.Close()
		var out map[string]any
		_ = json.NewDecoder(res.Body).Decode(&out)
		return res.StatusCode, out
	}

	if code, out := post("/admin/v1/serve", `{"register":"nope","drink":"coke"}`); code != http.StatusServiceUnavailable || out["ok"] != false {
		t.Fatalf("unknown register: code=%d out=%v", code, out)
	}
	register := ""
	for name, n := range w.Metrics().Lines {
		if strings.HasPrefix(name, "register") && n == 1 {
			register = name
		}
	}
	if register == "" {
		t.Fatalf("no register line holds alice: %v", w.Metrics().Lines)
	}
	if code, out := post("/admin/v1/serve", `{"register":"`+register+`","drink":"coke"}`); code != http.StatusOK {
		t.Fatalf("serve: code=%d out=%v", code, out)
	}
	waitFor(t, "drinks sold", func() bool { return w.Metrics().Totals.DrinksSold == 1 })

	if code, out := post("/admin/v1/close", `{}`); code != http.StatusOK {
		t.Fatalf("close: code=%d out=%v", code, out)
	}
	waitFor(t, "closed", func() bool { return w.Metrics().Closed })
}

func TestAdmin_DisabledRoutesAreMissing(t *testing.T) {
	_, srv := newTestServer(t, false)
	res, err := http.Post(srv.URL+"/admin/v1/close", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d want 404", res.StatusCode)
	}
}
