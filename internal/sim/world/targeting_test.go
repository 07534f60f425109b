package world

import (
	"testing"

	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/nav"
)

func TestFindBestStation_Registers(t *testing.T) {
	cases := []struct {
		name   string
		first  int // customers already in register-1's line
		second int // customers already in register-2's line
		walled bool
		want   string
	}{
		{name: "both empty goes to the older", want: "register-1"},
		{name: "shorter line wins", first: 1, want: "register-2"},
		{name: "fewer waiting wins", first: 1, second: 2, want: "register-1"},
		{name: "equal lines go to the older", first: 2, second: 2, want: "register-1"},
		{name: "full line is skipped", first: 3, second: 2, want: "register-2"},
		{name: "both full", first: 3, second: 3},
		{name: "unreachable", walled: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWorld(t, nil)
			at := nav.Tile{X: 3, Y: 6}
			ref := w.SpawnAgent(AgentSpec{Name: "asker", State: ai.QueueForRegister, Drink: "coke", Orders: 1, At: &at})
			a := mustAgent(t, w, ref)

			fill := func(name string, n int) {
				st, ok := w.StationByName(name)
				if !ok {
					t.Fatalf("no station %s", name)
				}
				for i := 0; i < n; i++ {
					other := w.SpawnAgent(AgentSpec{State: ai.Wander})
					if _, err := st.Line.Join(other); err != nil {
						t.Fatalf("join %s: %v", name, err)
					}
				}
			}
			fill("register-1", tc.first)
			fill("register-2", tc.second)
			if tc.walled {
				for _, d := range []nav.Tile{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
					w.grid.SetBlocked(at.Add(d), true)
				}
			}

			st, ok := w.FindBestStation(a, KindRegister)
			if tc.want == "" {
				if ok {
					t.Fatalf("got %s, want no station", st.Name)
				}
				return
			}
			if !ok {
				t.Fatalf("no station found, want %s", tc.want)
			}
			if st.Name != tc.want {
				t.Fatalf("got %s want %s", st.Name, tc.want)
			}
		})
	}
}

func TestFindBestStation_SkipsOtherKinds(t *testing.T) {
	w := newTestWorld(t, nil)
	a := mustAgent(t, w, w.SpawnAgent(AgentSpec{State: ai.Bathroom}))
	st, ok := w.FindBestStation(a, KindToilet)
	if !ok || st.Name != "toilet-1" {
		t.Fatalf("got %v,%v want toilet-1", st, ok)
	}
}
