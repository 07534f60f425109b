package observerproto

// Version is the observer protocol version.
const Version = "0.1"

// Client -> Server. First message on the observer WS connection.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	// IncludeNotes asks for per-tick notes (served, paid, vomit...).
	IncludeNotes bool `json:"include_notes,omitempty"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string        `json:"protocol_version"`
	WorldID         string        `json:"world_id"`
	SessionID       string        `json:"session_id"`
	Tick            uint64        `json:"tick"`
	TickRateHz      int           `json:"tick_rate_hz"`
	Floor           FloorParams   `json:"floor"`
	Stations        []StationInfo `json:"stations"`
	Menu            []string      `json:"menu"`
}

type FloorParams struct {
	W        int      `json:"w"`
	H        int      `json:"h"`
	Entrance [2]int   `json:"entrance"`
	Exit     [2]int   `json:"exit"`
	Walls    [][2]int `json:"walls,omitempty"`
}

type StationInfo struct {
	Ref    string `json:"ref"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Tile   [2]int `json:"tile"`
	Facing string `json:"facing"`
}

// Server -> Client. Sent every tick.
type TickMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Tick            uint64  `json:"tick"`
	Clock           float64 `json:"clock"`
	Closed          bool    `json:"closed"`

	Balance int `json:"balance"`
	Tips    int `json:"tips"`

	Agents      []AgentState      `json:"agents"`
	Lines       []LineState       `json:"lines"`
	Hazards     [][2]int          `json:"hazards,omitempty"`
	Transitions []TransitionEntry `json:"transitions,omitempty"`
	Notes       []NoteEntry       `json:"notes,omitempty"`
}

type AgentState struct {
	Ref   string     `json:"ref"`
	Name  string     `json:"name"`
	Pos   [2]float64 `json:"pos"`
	State string     `json:"state"`

	Drink     string  `json:"drink,omitempty"`
	Remaining int     `json:"remaining,omitempty"`
	Patience  float64 `json:"patience,omitempty"`
	Holding   string  `json:"holding,omitempty"`
}

type LineState struct {
	Station string   `json:"station"`
	Members []string `json:"members"`
}

type TransitionEntry struct {
	Agent  string `json:"agent"`
	From   string `json:"from"`
	To     string `json:"to"`
	Forced bool   `json:"forced,omitempty"`
}

type NoteEntry struct {
	Agent  string `json:"agent"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}
