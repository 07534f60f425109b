package observerproto_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"taproom.ai/internal/observerproto"
)

func compile(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	s, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", name))
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

func validate(t *testing.T, s *jsonschema.Schema, msg any) {
	t.Helper()
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := s.Validate(v); err != nil {
		t.Fatalf("validate %s: %v", raw, err)
	}
}

func TestSchemas_TickMsg(t *testing.T) {
	s := compile(t, "observer_tick.schema.json")

	validate(t, s, observerproto.TickMsg{
		Type:            "TICK",
		ProtocolVersion: observerproto.Version,
		Tick:            12,
		Clock:           0.6,
		Balance:         105,
		Tips:            3,
		Agents: []observerproto.AgentState{{
			Ref: "E1.1", Name: "alice", Pos: [2]float64{5.5, 1.5}, State: "drinking",
			Drink: "coke", Remaining: 1, Patience: 0.75, Holding: "E1.1",
		}},
		Lines:       []observerproto.LineState{{Station: "register-1", Members: []string{}}},
		Hazards:     [][2]int{{3, 4}},
		Transitions: []observerproto.TransitionEntry{{Agent: "E1.1", From: "at_register_wait_for_drink", To: "drinking"}},
		Notes:       []observerproto.NoteEntry{{Agent: "E1.1", Kind: "served", Detail: "coke"}},
	})

	// Empty floors still carry the arrays.
	validate(t, s, observerproto.TickMsg{
		Type:            "TICK",
		ProtocolVersion: observerproto.Version,
		Agents:          []observerproto.AgentState{},
		Lines:           []observerproto.LineState{},
	})
}

func TestSchemas_TickMsgRejectsUnknownState(t *testing.T) {
	s := compile(t, "observer_tick.schema.json")
	var v any
	_ = json.Unmarshal([]byte(`{
	  "type":"TICK","protocol_version":"0.1","tick":1,"clock":0.05,"closed":false,
	  "balance":0,"tips":0,"lines":[],
	  "agents":[{"ref":"E1.1","name":"bob","pos":[1,1],"state":"dancing"}]
	}`), &v)
	if err := s.Validate(v); err == nil {
		t.Fatalf("expected validation error for unknown state")
	}
}

func TestSchemas_Bootstrap(t *testing.T) {
	s := compile(t, "observer_bootstrap.schema.json")
	validate(t, s, observerproto.BootstrapResponse{
		ProtocolVersion: observerproto.Version,
		WorldID:         "bar",
		SessionID:       "s1",
		TickRateHz:      20,
		Floor:           observerproto.FloorParams{W: 16, H: 12, Entrance: [2]int{8, 11}, Exit: [2]int{8, 11}},
		Stations:        []observerproto.StationInfo{{Ref: "E1.1", Kind: "register", Name: "register-1", Tile: [2]int{5, 0}, Facing: "S"}},
		Menu:            []string{"coke"},
	})
}
