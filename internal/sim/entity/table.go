package entity

import "fmt"

// Ref is a generation-checked handle into a Table. The zero Ref is never issued.
type Ref struct {
	Index uint32 `json:"index"`
	Gen   uint32 `json:"gen"`
}

var Nil Ref

func (r Ref) IsNil() bool { return r.Gen == 0 }

func (r Ref) String() string {
	if r.IsNil() {
		return "E-"
	}
	return fmt.Sprintf("E%d.%d", r.Index, r.Gen)
}

type slot[T any] struct {
	gen  uint32
	live bool
	seq  uint64
	val  *T
}

// Table stores values behind generation-checked refs and iterates them in
// creation order. Values are heap allocated so pointers returned by Get stay
// valid across inserts until the entry is removed.
type Table[T any] struct {
	slots   []slot[T]
	free    []uint32
	order   []Ref
	nextSeq uint64
}

func NewTable[T any]() *Table[T] { return &Table[T]{} }

func (t *Table[T]) Insert(v T) Ref {
	t.nextSeq++
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot[T]{})
	}
	s := &t.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.live = true
	s.seq = t.nextSeq
	val := v
	s.val = &val
	r := Ref{Index: idx, Gen: s.gen}
	t.order = append(t.order, r)
	return r
}

func (t *Table[T]) Valid(r Ref) bool {
	if r.IsNil() || int(r.Index) >= len(t.slots) {
		return false
	}
	s := &t.slots[r.Index]
	return s.live && s.gen == r.Gen
}

func (t *Table[T]) Get(r Ref) (*T, bool) {
	if !t.Valid(r) {
		return nil, false
	}
	return t.slots[r.Index].val, true
}

// Seq returns the creation sequence of r (0 when r is stale).
func (t *Table[T]) Seq(r Ref) uint64 {
	if !t.Valid(r) {
		return 0
	}
	return t.slots[r.Index].seq
}

func (t *Table[T]) Remove(r Ref) bool {
	if !t.Valid(r) {
		return false
	}
	s := &t.slots[r.Index]
	s.live = false
	s.val = nil
	t.free = append(t.free, r.Index)
	for i, o := range t.order {
		if o == r {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *Table[T]) Len() int { return len(t.order) }

// Refs returns live refs in creation order. The slice is a copy.
func (t *Table[T]) Refs() []Ref {
	out := make([]Ref, len(t.order))
	copy(out, t.order)
	return out
}

// Each visits live entries in creation order until fn returns false.
// Removing entries from inside fn is allowed.
func (t *Table[T]) Each(fn func(Ref, *T) bool) {
	for _, r := range t.Refs() {
		v, ok := t.Get(r)
		if !ok {
			continue
		}
		if !fn(r, v) {
			return
		}
	}
}
