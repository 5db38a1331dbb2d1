package rules

import (
	"github.com/halligalli/bell-server/internal/game/seats"
)

// TurnState is the coordinator's coarse state.
type TurnState int

const (
	// TurnIdle means no seat holds a player.
	TurnIdle TurnState = iota
	// TurnActive means the pointer names a seat that may reveal a card.
	TurnActive
)

func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "IDLE"
	case TurnActive:
		return "ACTIVE"
	default:
		return "UNKNOWN"
	}
}

// Occupancy reports whether a seat currently holds a player.
type Occupancy func(seats.Seat) bool

// TurnCoordinator gates card reveals to the seat holding the turn and rotates
// the turn through the fixed seat order. It is not safe for concurrent use.
type TurnCoordinator struct {
	pointer  seats.Seat
	occupied Occupancy
}

// NewTurnCoordinator creates a coordinator pointing at the first seat.
func NewTurnCoordinator(occupied Occupancy) *TurnCoordinator {
	return &TurnCoordinator{
		pointer:  seats.TopLeft,
		occupied: occupied,
	}
}

// Current returns the seat holding the turn.
func (tc *TurnCoordinator) Current() seats.Seat {
	return tc.pointer
}

// State reports IDLE when no seats are occupied.
func (tc *TurnCoordinator) State() TurnState {
	for _, seat := range seats.All() {
		if tc.occupied(seat) {
			return TurnActive
		}
	}
	return TurnIdle
}

// CanFlip reports whether seat may reveal a card right now.
func (tc *TurnCoordinator) CanFlip(seat seats.Seat) bool {
	return seat == tc.pointer && tc.occupied(seat)
}

// Advance steps the pointer to the next seat in fixed order after an
// accepted reveal and returns it. The seat may be empty.
func (tc *TurnCoordinator) Advance() seats.Seat {
	tc.pointer = tc.pointer.Next()
	return tc.pointer
}

// SeatLeft hands the turn to the next occupied seat if the departed seat held
// it. The occupancy check must already report seat as empty. It returns false
// when no seats remain, leaving the pointer untouched.
func (tc *TurnCoordinator) SeatLeft(seat seats.Seat) bool {
	if tc.State() == TurnIdle {
		return false
	}
	if seat == tc.pointer {
		next := tc.pointer.Next()
		for !tc.occupied(next) {
			next = next.Next()
		}
		tc.pointer = next
	}
	return true
}

// Reset returns the pointer to the first seat.
func (tc *TurnCoordinator) Reset() {
	tc.pointer = seats.TopLeft
}
