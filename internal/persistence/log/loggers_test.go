package log

import (
	"testing"

	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/ledger"
	"taproom.ai/internal/sim/world"
)

func TestTickLogger_WritesEventsAndLedger(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)
	entries := []world.TickLogEntry{
		{Tick: 3, SessionID: "s1", Transitions: []world.TransitionRecord{{Tick: 3, Name: "alice", From: ai.QueueForRegister, To: ai.AtRegisterWaitForDrink}}},
		{Tick: 9, SessionID: "s1", Ledger: []ledger.Transaction{{Seq: 1, Kind: ledger.KindDeposit, Amount: 5}, {Seq: 2, Kind: ledger.KindTip, Amount: 4}}, Balance: 9},
	}
	for _, e := range entries {
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("WriteTick: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var got []world.TickLogEntry
	if err := ReadTicks(dir, func(e world.TickLogEntry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("ReadTicks: %v", err)
	}
	if len(got) != 2 || got[0].Tick != 3 || got[1].Balance != 9 {
		t.Fatalf("entries=%+v", got)
	}
	if tr := got[0].Transitions[0]; tr.From != ai.QueueForRegister || tr.To != ai.AtRegisterWaitForDrink {
		t.Fatalf("transition=%+v", tr)
	}

	files, err := LedgerFiles(dir)
	if err != nil || len(files) != 1 {
		t.Fatalf("ledger files=%v err=%v", files, err)
	}
	total := 0
	if err := ReadJSONL(files[0], func(l LedgerLine) error {
		if l.Tick != 9 {
			t.Fatalf("ledger line tick=%d", l.Tick)
		}
		total += l.Tx.Amount
		return nil
	}); err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if total != 9 {
		t.Fatalf("ledger total=%d, want 9", total)
	}
}
