package game

import (
	"github.com/halligalli/bell-server/internal/game/cards"
	"github.com/halligalli/bell-server/internal/game/rules"
	"github.com/halligalli/bell-server/internal/game/seats"
)

// SeatSnapshot captures one seat for external use.
type SeatSnapshot struct {
	Seat     seats.Seat
	Reserved bool
	Joined   bool
	Name     string
	Score    int
	Revealed *cards.Card
}

// Snapshot captures a consistent view of the match.
type Snapshot struct {
	Turn      seats.Seat
	TurnState rules.TurnState
	Over      bool
	Seats     []SeatSnapshot
}

// Players returns the number of logged-in seats.
func (s Snapshot) Players() int {
	n := 0
	for _, seat := range s.Seats {
		if seat.Joined {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the current state.
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := Snapshot{
		Turn:      m.turn.Current(),
		TurnState: m.turn.State(),
		Over:      m.over,
		Seats:     make([]SeatSnapshot, 0, seats.Count),
	}
	for _, seat := range seats.All() {
		ss := SeatSnapshot{Seat: seat, Reserved: m.alloc.Held(seat)}
		if p := m.players[seat]; p != nil {
			ss.Joined = p.joined
			ss.Name = p.name
			ss.Score = p.score
		}
		if rc := m.revealed[seat]; rc != nil {
			c := rc.card
			ss.Revealed = &c
		}
		out.Seats = append(out.Seats, ss)
	}
	return out
}
