package queue

import (
	"errors"
	"math/rand"
	"testing"

	"taproom.ai/internal/sim/entity"
)

func ref(i uint32) entity.Ref { return entity.Ref{Index: i, Gen: 1} }

func assertContiguous(t *testing.T, l *Line) {
	t.Helper()
	for i, m := range l.Members() {
		if got := l.PositionOf(m); got != i {
			t.Fatalf("member %v at %d reports position %d", m, i, got)
		}
	}
}

func TestLine_JoinCapacity(t *testing.T) {
	l := NewLine(3)
	for i := uint32(1); i <= 3; i++ {
		if _, err := l.Join(ref(i)); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}
	if _, err := l.Join(ref(4)); !errors.Is(err, ErrFull) {
		t.Fatalf("expected ErrFull, got %v", err)
	}
	if _, err := l.Join(ref(1)); !errors.Is(err, ErrAlreadyQueued) && !errors.Is(err, ErrFull) {
		t.Fatalf("unexpected err %v", err)
	}
}

func TestLine_DuplicateJoinRefused(t *testing.T) {
	l := NewLine(3)
	l.Join(ref(1))
	if _, err := l.Join(ref(1)); !errors.Is(err, ErrAlreadyQueued) {
		t.Fatalf("expected ErrAlreadyQueued, got %v", err)
	}
}

func TestLine_LeaveCompacts(t *testing.T) {
	l := NewLine(3)
	l.Join(ref(1))
	l.Join(ref(2))
	l.Join(ref(3))
	l.Leave(ref(1))
	if !l.MayAdvance(ref(2)) {
		t.Fatalf("second agent should now be at the front")
	}
	if l.PositionOf(ref(3)) != 1 {
		t.Fatalf("pos(3)=%d", l.PositionOf(ref(3)))
	}
	if l.PositionOf(ref(1)) != -1 {
		t.Fatalf("left agent still present")
	}
	assertContiguous(t, l)
}

func TestLine_RandomOpsStayContiguous(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	l := NewLine(5)
	for i := 0; i < 2000; i++ {
		r := ref(uint32(rnd.Intn(8) + 1))
		if rnd.Intn(2) == 0 {
			l.Join(r)
		} else {
			l.Leave(r)
		}
		if l.Len() > l.Capacity() {
			t.Fatalf("len %d exceeds capacity", l.Len())
		}
		assertContiguous(t, l)
	}
}

func TestLine_Prune(t *testing.T) {
	l := NewLine(3)
	l.Join(ref(1))
	l.Join(ref(2))
	l.Join(ref(3))
	n := l.Prune(func(r entity.Ref) bool { return r != ref(2) })
	if n != 1 || l.Len() != 2 || l.PositionOf(ref(3)) != 1 {
		t.Fatalf("prune n=%d len=%d pos3=%d", n, l.Len(), l.PositionOf(ref(3)))
	}
}

func TestWaiter_WalksUpOneSlotPerAdvance(t *testing.T) {
	l := NewLine(3)
	l.Join(ref(1))
	l.Join(ref(2))
	w := NewWaiter()
	if err := w.Join(l, ref(3)); err != nil {
		t.Fatalf("join: %v", err)
	}
	if w.Slot != 3 {
		t.Fatalf("slot after join=%d want 3", w.Slot)
	}
	st := w.Advance(l, ref(3))
	if st.Position != 2 || st.Improved || st.AtFront {
		t.Fatalf("first advance: %+v", st)
	}

	l.Leave(ref(1))
	l.Leave(ref(2))
	st = w.Advance(l, ref(3))
	if st.Position != 0 || !st.Improved || !st.JustReachedFront || st.Slot != 1 {
		t.Fatalf("front advance: %+v", st)
	}
	st = w.Advance(l, ref(3))
	if st.JustReachedFront {
		t.Fatalf("reached-front edge fired twice")
	}
}

func TestWaiter_BehindFrontMovesGradually(t *testing.T) {
	l := NewLine(4)
	l.Join(ref(1))
	l.Join(ref(2))
	l.Join(ref(3))
	w := NewWaiter()
	w.Join(l, ref(4)) // slot 4
	l.Leave(ref(2))
	l.Leave(ref(3)) // now at position 1, wants slot 2
	st := w.Advance(l, ref(4))
	if st.Slot != 3 || !st.Improved {
		t.Fatalf("advance 1: %+v", st)
	}
	st = w.Advance(l, ref(4))
	if st.Slot != 2 || st.Improved {
		t.Fatalf("advance 2: %+v", st)
	}
}

func TestWaiter_RemovedFromLine(t *testing.T) {
	l := NewLine(2)
	w := NewWaiter()
	w.Join(l, ref(1))
	l.Leave(ref(1))
	if st := w.Advance(l, ref(1)); st.Position != -1 || w.Joined {
		t.Fatalf("expected removal to be observed: %+v", st)
	}
}
