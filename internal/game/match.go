// Package game holds the authoritative state of the running match. Every read
// and write of seats, scores, revealed cards and the turn pointer goes through
// Match, which serializes them behind a single mutex held across the
// resulting broadcast.
package game

import (
	"errors"
	"strings"
	"sync"

	"github.com/halligalli/bell-server/internal/game/cards"
	"github.com/halligalli/bell-server/internal/game/rules"
	"github.com/halligalli/bell-server/internal/game/scoring"
	"github.com/halligalli/bell-server/internal/game/seats"
	"github.com/halligalli/bell-server/internal/protocol"
	"go.uber.org/zap"
)

// DefaultWinScore ends the match when a seat reaches it.
const DefaultWinScore = 10

var (
	// ErrNotSeated is returned by Join for a peer without a reserved seat.
	ErrNotSeated = errors.New("peer holds no seat")
	// ErrAlreadyJoined is returned by Join for a peer that logged in before.
	ErrAlreadyJoined = errors.New("peer already logged in")
	// ErrNameTaken is returned by Join when another logged-in player uses the name.
	ErrNameTaken = errors.New("name already in use")
	// ErrEmptyName is returned by Join for a blank name.
	ErrEmptyName = errors.New("name is required")
)

// Peer is the match's view of a connected session.
type Peer interface {
	ID() string
	Send(msg protocol.Message) error
	Close() error
}

// Options tunes match rules.
type Options struct {
	WinScore int
	// ResetWhenEmpty starts a fresh match once the last player leaves a
	// finished one.
	ResetWhenEmpty bool
}

type player struct {
	peer   Peer
	name   string
	joined bool
	score  int
}

type revealedCard struct {
	card cards.Card
	ref  protocol.CardRef
}

// Match is the single shared game state.
type Match struct {
	mu       sync.Mutex
	logger   *zap.Logger
	opts     Options
	alloc    *seats.Allocator
	players  [seats.Count]*player
	revealed [seats.Count]*revealedCard
	turn     *rules.TurnCoordinator
	over     bool
	out      *broadcaster
}

// NewMatch creates an empty match.
func NewMatch(opts Options, logger *zap.Logger) *Match {
	if opts.WinScore <= 0 {
		opts.WinScore = DefaultWinScore
	}
	m := &Match{
		logger: logger,
		opts:   opts,
		alloc:  seats.NewAllocator(),
	}
	m.turn = rules.NewTurnCoordinator(m.joinedLocked)
	m.out = newBroadcaster(logger)
	return m
}

func (m *Match) lock() {
	m.mu.Lock()
}

// unlock runs the disconnect path for every peer whose send failed during
// the operation, then releases the match.
func (m *Match) unlock() {
	for failed := m.out.takeFailed(); len(failed) > 0; failed = m.out.takeFailed() {
		for _, p := range failed {
			_ = p.Close()
			m.leaveLocked(p, "send failed")
		}
	}
	m.mu.Unlock()
}

func (m *Match) joinedLocked(seat seats.Seat) bool {
	p := m.players[seat]
	return p != nil && p.joined
}

func (m *Match) seatOfLocked(peer Peer) (seats.Seat, bool) {
	for _, seat := range seats.All() {
		if p := m.players[seat]; p != nil && p.peer == peer {
			return seat, true
		}
	}
	return 0, false
}

func (m *Match) joinedPeersLocked() []Peer {
	peers := make([]Peer, 0, seats.Count)
	for _, seat := range seats.All() {
		if m.joinedLocked(seat) {
			peers = append(peers, m.players[seat].peer)
		}
	}
	return peers
}

func (m *Match) broadcastLocked(msg protocol.Message) {
	m.out.fanOut(m.joinedPeersLocked(), msg)
}

// FreeSeats returns the number of seats no connection holds.
func (m *Match) FreeSeats() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return seats.Count - m.alloc.InUse()
}

// Reserve claims the first free seat for a freshly accepted connection.
func (m *Match) Reserve(peer Peer) (seats.Seat, error) {
	m.lock()
	defer m.unlock()

	seat, err := m.alloc.Acquire()
	if err != nil {
		return 0, err
	}
	m.players[seat] = &player{peer: peer}

	m.logger.Info("seat reserved",
		zap.String("session_id", peer.ID()),
		zap.String("seat", seat.String()),
	)
	return seat, nil
}

// Join logs a seated peer in under name, replays the table to it and
// announces it to everyone.
func (m *Match) Join(peer Peer, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	m.lock()
	defer m.unlock()

	seat, ok := m.seatOfLocked(peer)
	if !ok {
		return ErrNotSeated
	}
	pl := m.players[seat]
	if pl.joined {
		return ErrAlreadyJoined
	}
	for _, other := range m.players {
		if other != nil && other.joined && other.name == name {
			return ErrNameTaken
		}
	}

	pl.name = name
	pl.joined = true
	pl.score = 0

	m.out.direct(peer, protocol.PositionAssigned(seat.String()))
	for _, s := range seats.All() {
		other := m.players[s]
		if s == seat || other == nil || !other.joined {
			continue
		}
		m.out.direct(peer, protocol.ScoreUpdate(other.name, s.String(), other.score))
		if rc := m.revealed[s]; rc != nil {
			m.out.direct(peer, protocol.FlipCard(other.name, s.String(), rc.ref))
		}
	}

	m.broadcastLocked(protocol.TurnUpdate(m.turn.Current().String()))
	m.broadcastLocked(protocol.ScoreUpdate(name, seat.String(), 0))

	m.logger.Info("player joined",
		zap.String("session_id", peer.ID()),
		zap.String("client_id", name),
		zap.String("seat", seat.String()),
		zap.String("turn", m.turn.Current().String()),
	)
	return nil
}

// Leave removes a peer from the table. Calling it more than once, or for a
// peer that never got a seat, is a no-op.
func (m *Match) Leave(peer Peer) {
	m.lock()
	defer m.unlock()
	m.leaveLocked(peer, "left")
}

func (m *Match) leaveLocked(peer Peer, reason string) {
	seat, ok := m.seatOfLocked(peer)
	if !ok {
		return
	}
	pl := m.players[seat]
	m.players[seat] = nil
	m.revealed[seat] = nil
	m.alloc.Release(seat)

	if !pl.joined {
		m.logger.Debug("reserved seat released",
			zap.String("session_id", peer.ID()),
			zap.String("seat", seat.String()),
		)
		return
	}

	m.broadcastLocked(protocol.ScoreUpdate(pl.name, seat.String(), protocol.RemovedScore))
	if m.turn.SeatLeft(seat) {
		m.broadcastLocked(protocol.TurnUpdate(m.turn.Current().String()))
	} else if m.over && m.opts.ResetWhenEmpty {
		m.resetLocked()
	}

	m.logger.Info("player left",
		zap.String("session_id", peer.ID()),
		zap.String("client_id", pl.name),
		zap.String("seat", seat.String()),
		zap.String("reason", reason),
	)
}

func (m *Match) resetLocked() {
	m.revealed = [seats.Count]*revealedCard{}
	m.turn.Reset()
	m.over = false
	m.logger.Info("match reset")
}

// FlipCard records a reveal from the seat holding the turn and passes the
// turn on. Reveals from any other seat, undecodable cards and reveals after
// the match ended are dropped without a reply.
func (m *Match) FlipCard(peer Peer, ref protocol.CardRef) {
	m.lock()
	defer m.unlock()

	if m.over {
		return
	}
	seat, ok := m.seatOfLocked(peer)
	if !ok || !m.turn.CanFlip(seat) {
		m.logger.Debug("out of turn flip dropped",
			zap.String("session_id", peer.ID()),
			zap.String("turn", m.turn.Current().String()),
		)
		return
	}

	card, err := decodeCard(ref)
	if err != nil {
		m.logger.Warn("flip with unknown card dropped",
			zap.String("session_id", peer.ID()),
			zap.String("image_ref", ref.ImageRef),
			zap.Error(err),
		)
		return
	}

	pl := m.players[seat]
	m.revealed[seat] = &revealedCard{card: card, ref: ref}
	m.broadcastLocked(protocol.FlipCard(pl.name, seat.String(), ref))

	next := m.turn.Advance()
	m.broadcastLocked(protocol.TurnUpdate(next.String()))

	m.logger.Debug("card flipped",
		zap.String("client_id", pl.name),
		zap.String("seat", seat.String()),
		zap.Stringer("card", card),
		zap.String("next", next.String()),
	)
}

func decodeCard(ref protocol.CardRef) (cards.Card, error) {
	if ref.ImageRef != "" {
		return cards.Parse(ref.ImageRef)
	}
	return cards.Parse(ref.Kind)
}

// RingBell scores the revealed cards for the ringing seat.
func (m *Match) RingBell(peer Peer) {
	m.lock()
	defer m.unlock()

	if m.over {
		return
	}
	seat, ok := m.seatOfLocked(peer)
	if !ok || !m.joinedLocked(seat) {
		return
	}
	pl := m.players[seat]

	table := make([]cards.Card, 0, seats.Count)
	for _, rc := range m.revealed {
		if rc != nil {
			table = append(table, rc.card)
		}
	}

	result := scoring.Evaluate(table)
	pl.score = scoring.Apply(pl.score, result.Delta)
	if result.Won() {
		m.revealed = [seats.Count]*revealedCard{}
	}

	m.logger.Info("bell rung",
		zap.String("client_id", pl.name),
		zap.String("seat", seat.String()),
		zap.Int("delta", result.Delta),
		zap.String("reason", string(result.Reason)),
		zap.Int("score", pl.score),
	)

	m.broadcastLocked(protocol.ScoreUpdate(pl.name, seat.String(), pl.score))
	if result.Won() {
		m.broadcastLocked(protocol.RingBell(pl.name, seat.String()))
	}

	if pl.score >= m.opts.WinScore {
		m.over = true
		m.broadcastLocked(protocol.GameOver(pl.name, pl.score))
		m.logger.Info("game over",
			zap.String("client_id", pl.name),
			zap.String("seat", seat.String()),
			zap.Int("score", pl.score),
		)
		return
	}
	m.broadcastLocked(protocol.TurnUpdate(m.turn.Current().String()))
}
