package world

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"taproom.ai/internal/observerproto"
	"taproom.ai/internal/sim/ai"
)

func TestObserver_ReceivesLatestTickFrame(t *testing.T) {
	w := newTestWorld(t, nil)
	w.SpawnAgent(AgentSpec{Name: "alice", State: ai.QueueForRegister, Drink: "coke", Orders: 1})

	out := make(chan []byte, 1)
	w.handleObserverJoin(ObserverJoinRequest{SessionID: "O1", TickOut: out, IncludeNotes: true})
	stepN(w, 3)

	var msg observerproto.TickMsg
	select {
	case b := <-out:
		if err := json.Unmarshal(b, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
	default:
		t.Fatalf("no frame queued")
	}
	if msg.Type != "TICK" || msg.Tick != 2 {
		t.Fatalf("type=%q tick=%d, want TICK/2", msg.Type, msg.Tick)
	}
	if len(msg.Agents) != 1 || msg.Agents[0].Name != "alice" || msg.Agents[0].State != "at_register_wait_for_drink" {
		t.Fatalf("agents=%+v", msg.Agents)
	}
	found := false
	for _, l := range msg.Lines {
		if l.Station == "register-1" && len(l.Members) == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("register-1 line not reported: %+v", msg.Lines)
	}

	w.handleObserverLeave("O1")
	w.StepOnce(testDT)
	select {
	case <-out:
		t.Fatalf("frame sent after leave")
	default:
	}
}

func TestBootstrap_ListsStations(t *testing.T) {
	w := newTestWorld(t, nil)
	b := w.Bootstrap()
	if b.ProtocolVersion != observerproto.Version || b.SessionID == "" {
		t.Fatalf("bootstrap=%+v", b)
	}
	if len(b.Stations) != 4 {
		t.Fatalf("stations=%d, want 4", len(b.Stations))
	}
	if len(b.Menu) == 0 || b.Menu[0] != "coke" {
		t.Fatalf("menu=%v", b.Menu)
	}
}

func TestObserver_FramesMatchSchema(t *testing.T) {
	schema, err := jsonschema.Compile(filepath.Join("..", "..", "..", "schemas", "observer_tick.schema.json"))
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}
	w := newTestWorld(t, func(c *WorldConfig) { c.Janitors = 1 })
	w.SpawnAgent(AgentSpec{Name: "alice", State: ai.QueueForRegister, Drink: "coke", Orders: 1})
	w.SpawnAgent(AgentSpec{Name: "bob", State: ai.Wander})

	out := make(chan []byte, 1)
	w.handleObserverJoin(ObserverJoinRequest{SessionID: "O1", TickOut: out, IncludeNotes: true})
	for i := 0; i < 40; i++ {
		w.StepOnce(testDT)
		var v any
		if err := json.Unmarshal(<-out, &v); err != nil {
			t.Fatalf("tick %d: decode: %v", i, err)
		}
		if err := schema.Validate(v); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
}
