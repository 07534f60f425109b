package world

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
)

type failingIndex struct{ calls int }

func (f *failingIndex) WriteTick(TickLogEntry) error {
	f.calls++
	return errors.New("index offline")
}

func TestStep_LogsIndexWriteError(t *testing.T) {
	var buf bytes.Buffer
	w := newTestWorld(t, func(cfg *WorldConfig) {
		cfg.Logger = log.New(&buf, "", 0)
	})
	ix := &failingIndex{}
	w.SetIndex(ix)

	w.bank.Deposit(5, "cover")
	w.StepOnce(testDT)

	if ix.calls != 1 {
		t.Fatalf("index calls=%d want 1", ix.calls)
	}
	if !strings.Contains(buf.String(), "WARN index: tick=0: index offline") {
		t.Fatalf("index error not logged: %q", buf.String())
	}
}
