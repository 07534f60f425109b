// Package queue implements the fixed-capacity FIFO line that forms in front of
// a service station.
package queue

import (
	"errors"

	"taproom.ai/internal/sim/entity"
)

var (
	ErrFull          = errors.New("queue: line is full")
	ErrAlreadyQueued = errors.New("queue: agent already in line")
	ErrNilRef        = errors.New("queue: nil agent ref")
)

// Line holds agent refs in arrival order. Positions are always 0..Len()-1.
type Line struct {
	capacity int
	members  []entity.Ref
}

func NewLine(capacity int) *Line {
	if capacity < 1 {
		capacity = 1
	}
	return &Line{capacity: capacity, members: make([]entity.Ref, 0, capacity)}
}

func (l *Line) Capacity() int  { return l.capacity }
func (l *Line) Len() int       { return len(l.members) }
func (l *Line) HasSpace() bool { return len(l.members) < l.capacity }
func (l *Line) Empty() bool    { return len(l.members) == 0 }

// Join appends r and returns its position.
func (l *Line) Join(r entity.Ref) (int, error) {
	if r.IsNil() {
		return -1, ErrNilRef
	}
	if l.PositionOf(r) >= 0 {
		return -1, ErrAlreadyQueued
	}
	if !l.HasSpace() {
		return -1, ErrFull
	}
	l.members = append(l.members, r)
	return len(l.members) - 1, nil
}

// PositionOf returns r's 0-based position or -1.
func (l *Line) PositionOf(r entity.Ref) int {
	for i, m := range l.members {
		if m == r {
			return i
		}
	}
	return -1
}

func (l *Line) MayAdvance(r entity.Ref) bool {
	return len(l.members) > 0 && l.members[0] == r
}

func (l *Line) Front() (entity.Ref, bool) {
	if len(l.members) == 0 {
		return entity.Nil, false
	}
	return l.members[0], true
}

// Leave removes r; everyone behind moves up one position.
func (l *Line) Leave(r entity.Ref) bool {
	i := l.PositionOf(r)
	if i < 0 {
		return false
	}
	l.members = append(l.members[:i], l.members[i+1:]...)
	return true
}

// Prune drops members for which alive returns false and reports how many
// were removed.
func (l *Line) Prune(alive func(entity.Ref) bool) int {
	kept := l.members[:0]
	for _, m := range l.members {
		if alive(m) {
			kept = append(kept, m)
		}
	}
	n := len(l.members) - len(kept)
	for i := len(kept); i < len(l.members); i++ {
		l.members[i] = entity.Nil
	}
	l.members = kept
	return n
}

func (l *Line) Members() []entity.Ref {
	out := make([]entity.Ref, len(l.members))
	copy(out, l.members)
	return out
}
