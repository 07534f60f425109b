package ai

import "fmt"

// State is the closed set of customer behaviour states.
type State uint8

const (
	Wander State = iota
	QueueForRegister
	AtRegisterWaitForDrink
	Drinking
	Bathroom
	Pay
	PlayJukebox
	CleanVomit
	Leave

	stateCount
)

var stateNames = [stateCount]string{
	"wander",
	"queue_for_register",
	"at_register_wait_for_drink",
	"drinking",
	"bathroom",
	"pay",
	"play_jukebox",
	"clean_vomit",
	"leave",
}

func (s State) String() string {
	if s >= stateCount {
		return fmt.Sprintf("state(%d)", uint8(s))
	}
	return stateNames[s]
}

func (s State) Valid() bool { return s < stateCount }

func ParseState(name string) (State, bool) {
	for i, n := range stateNames {
		if n == name {
			return State(i), true
		}
	}
	return 0, false
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("ai: invalid state %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	v, ok := ParseState(string(b))
	if !ok {
		return fmt.Errorf("ai: unknown state %q", string(b))
	}
	*s = v
	return nil
}

// HoldsLine reports whether an agent in s may own a service line entry.
func (s State) HoldsLine() bool {
	switch s {
	case QueueForRegister, AtRegisterWaitForDrink, Pay, Bathroom, PlayJukebox:
		return true
	}
	return false
}

// Overridable reports whether the bathroom override may interrupt s.
func (s State) Overridable() bool {
	switch s {
	case Bathroom, Drinking, Leave:
		return false
	}
	return true
}
