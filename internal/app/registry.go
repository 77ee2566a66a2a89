package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/clubroom/clubroom/internal/core"
	"github.com/clubroom/clubroom/internal/domain"
)

type sessionEntry struct {
	RoomID domain.RoomID
	Room   *core.Room
	Conn   core.SignalConnection
}

// Registry tracks which room each live session is bound to, so the
// transport layer can route disconnects without holding room pointers.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.SessionID]*sessionEntry)}
}

func (r *Registry) Bind(sid domain.SessionID, room *core.Room, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.sessions[sid]; ok && old.Conn != nil && old.Conn != conn {
		old.Conn.Close()
	}
	r.sessions[sid] = &sessionEntry{RoomID: room.Meta().ID, Room: room, Conn: conn}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room.Meta().ID)).Msg("bound session")
}

func (r *Registry) RoomOf(sid domain.SessionID) (*core.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Room, true
	}
	return nil, false
}

// Unbind drops the session entry, unless it has already been rebound
// to a newer connection.
func (r *Registry) Unbind(sid domain.SessionID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; !ok || e.Conn != conn {
		return
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbound session")
}
