// Package seats defines the four fixed table positions and the allocator that
// hands them out to incoming connections.
package seats

import (
	"errors"
	"fmt"
)

// Seat is one of the four fixed table positions. The zero value is the first
// seat in the cyclic order.
type Seat int

const (
	TopLeft Seat = iota
	TopRight
	BottomLeft
	BottomRight
)

// Count is the number of seats at the table.
const Count = 4

// ErrTableFull is returned when every seat already holds a session.
var ErrTableFull = errors.New("all seats are occupied")

var seatNames = map[Seat]string{
	TopLeft:     "topLeft",
	TopRight:    "topRight",
	BottomLeft:  "bottomLeft",
	BottomRight: "bottomRight",
}

func (s Seat) String() string {
	if name, ok := seatNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SEAT_%d", int(s))
}

// Valid reports whether s names one of the four seats.
func (s Seat) Valid() bool {
	return s >= 0 && s < Count
}

// Next returns the seat that follows s in the cyclic order.
func (s Seat) Next() Seat {
	return (s + 1) % Count
}

// All returns the seats in their fixed order.
func All() []Seat {
	return []Seat{TopLeft, TopRight, BottomLeft, BottomRight}
}

// Allocator tracks which seats are held. It is not safe for concurrent use;
// the match serializes access to it.
type Allocator struct {
	held [Count]bool
}

// NewAllocator returns an allocator with every seat free.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Acquire claims the first free seat in fixed order.
func (a *Allocator) Acquire() (Seat, error) {
	for _, seat := range All() {
		if !a.held[seat] {
			a.held[seat] = true
			return seat, nil
		}
	}
	return 0, ErrTableFull
}

// Release frees a seat. It reports whether the seat was held.
func (a *Allocator) Release(seat Seat) bool {
	if !seat.Valid() || !a.held[seat] {
		return false
	}
	a.held[seat] = false
	return true
}

// Held reports whether the seat is currently claimed.
func (a *Allocator) Held(seat Seat) bool {
	return seat.Valid() && a.held[seat]
}

// InUse returns the number of claimed seats.
func (a *Allocator) InUse() int {
	n := 0
	for _, held := range a.held {
		if held {
			n++
		}
	}
	return n
}
