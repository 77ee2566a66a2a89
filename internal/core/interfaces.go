// Package core owns the authoritative room session engine: the state
// container, the command dispatch pipeline, the DJ rotation machine and
// the music stream synchronizer. It never touches transport resources;
// adapters own and close their connections.
package core

import "github.com/clubroom/clubroom/internal/domain"

// Frame is a marshalled outbound message.
type Frame []byte

// SignalConnection is the outbound endpoint of one client connection.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// BackpressureAction tells the room what to do with a slow consumer.
type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy arbitrates backpressure. Consulted from the room goroutine.
type Policy interface {
	OnBackpressure(sid domain.SessionID, consecutiveDrops int) BackpressureAction
}

// Prefetcher warms an external resolver cache for a track link.
// Implementations must be best-effort and non-blocking.
type Prefetcher interface {
	Prefetch(link string)
}

// JoinOptions carry the client-supplied identity replayed on join.
type JoinOptions struct {
	PlayerID  string
	Name      string
	TextureID *int
}
