package observer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"taproom.ai/internal/observerproto"
	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/catalogs"
	"taproom.ai/internal/sim/nav"
	"taproom.ai/internal/sim/tuning"
	"taproom.ai/internal/sim/world"
)

func newRunningWorld(t *testing.T) *world.World {
	t.Helper()
	w, err := world.New(world.WorldConfig{
		ID:      "test",
		Seed:    7,
		Tuning:  tuning.Defaults(),
		Pathing: nav.Options{Inline: true},
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
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func TestBootstrapHandler_ListsStations(t *testing.T) {
	w := newRunningWorld(t)
	srv := httptest.NewServer(NewServer(w, nil).BootstrapHandler())
	defer srv.Close()

	res, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	var boot observerproto.BootstrapResponse
	if err := json.NewDecoder(res.Body).Decode(&boot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if boot.ProtocolVersion != observerproto.Version || boot.WorldID != "test" {
		t.Fatalf("bootstrap header mismatch: %+v", boot)
	}
	if len(boot.Stations) == 0 || len(boot.Menu) == 0 {
		t.Fatalf("bootstrap missing stations or menu: %+v", boot)
	}
}

func TestWSHandler_StreamsTicks(t *testing.T) {
	w := newRunningWorld(t)
	srv := httptest.NewServer(NewServer(w, nil).WSHandler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sub := observerproto.SubscribeMsg{Type: "SUBSCRIBE", ProtocolVersion: observerproto.Version}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg observerproto.TickMsg
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read tick: %v", err)
	}
	if msg.Type != "TICK" {
		t.Fatalf("type=%q", msg.Type)
	}
	found := false
	for _, a := range msg.Agents {
		if a.Name == "alice" {
			found = true
		}
	}
	if !found {
		t.Fatalf("alice missing from tick %d: %+v", msg.Tick, msg.Agents)
	}
}

func TestWSHandler_RejectsBadSubscribe(t *testing.T) {
	w := newRunningWorld(t)
	srv := httptest.NewServer(NewServer(w, nil).WSHandler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if err := conn.WriteJSON(map[string]string{"type": "HELLO"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}
