package game

import (
	"slices"

	"github.com/halligalli/bell-server/internal/protocol"
	"go.uber.org/zap"
)

// broadcaster delivers records best-effort. A failed send is logged and the
// peer is remembered so the match can run its disconnect path once the
// current operation finishes; delivery to the remaining peers continues.
type broadcaster struct {
	logger *zap.Logger
	failed []Peer
}

func newBroadcaster(logger *zap.Logger) *broadcaster {
	return &broadcaster{logger: logger}
}

func (b *broadcaster) fanOut(peers []Peer, msg protocol.Message) {
	for _, p := range peers {
		b.direct(p, msg)
	}
}

func (b *broadcaster) direct(p Peer, msg protocol.Message) {
	if slices.Contains(b.failed, p) {
		return
	}
	if err := p.Send(msg); err != nil {
		b.logger.Warn("send failed",
			zap.String("session_id", p.ID()),
			zap.String("type", string(msg.Type)),
			zap.Error(err),
		)
		b.failed = append(b.failed, p)
	}
}

func (b *broadcaster) takeFailed() []Peer {
	failed := b.failed
	b.failed = nil
	return failed
}
