package app

import (
	"errors"
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/clubroom/clubroom/internal/core"
	"github.com/clubroom/clubroom/internal/domain"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrBadPassword  = errors.New("wrong room password")
	ErrRoomExists   = errors.New("room name taken")
)

// CreateRoomParams carries everything needed to open a room.
type CreateRoomParams struct {
	Name        string
	Description string
	Password    string
	IsPublic    bool
}

// RoomManager owns the live room set. Rooms are created on demand,
// started immediately and removed when their actor reports empty.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*core.Room

	cfg      core.Config
	clock    clockwork.Clock
	policy   core.Policy
	prefetch core.Prefetcher
}

func NewRoomManager(cfg core.Config, clock clockwork.Clock, policy core.Policy, prefetch core.Prefetcher) *RoomManager {
	return &RoomManager{
		rooms:    make(map[domain.RoomID]*core.Room),
		cfg:      cfg,
		clock:    clock,
		policy:   policy,
		prefetch: prefetch,
	}
}

// Create opens a new room. Private rooms may carry a password, hashed
// before it ever reaches room state.
func (m *RoomManager) Create(p CreateRoomParams) (*core.Room, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, errors.New("room name required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		if string(r.Meta().Name) == name {
			return nil, ErrRoomExists
		}
	}

	meta := &domain.Room{
		ID:          domain.RoomID(uuid.NewString()),
		Name:        domain.RoomName(name),
		Description: p.Description,
		IsPublic:    p.IsPublic,
		AutoDispose: !p.IsPublic,
	}
	if p.IsPublic {
		meta.BackgroundSeed = rand.Intn(1 << 16)
	}
	if p.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		meta.PasswordHash = hash
	}

	room := core.NewRoom(meta, m.cfg, m.clock, m.policy, m.prefetch, m.onEmpty)
	room.Start()
	m.rooms[meta.ID] = room

	log.Info().Str("module", "app.manager").Str("room", string(meta.ID)).Str("name", name).Bool("public", p.IsPublic).Msg("room created")
	return room, nil
}

// EnsurePublicRoom guarantees the always-on lobby exists.
func (m *RoomManager) EnsurePublicRoom(name, description string) (*core.Room, error) {
	m.mu.RLock()
	for _, r := range m.rooms {
		if r.Meta().IsPublic && string(r.Meta().Name) == name {
			m.mu.RUnlock()
			return r, nil
		}
	}
	m.mu.RUnlock()
	return m.Create(CreateRoomParams{Name: name, Description: description, IsPublic: true})
}

// Get returns the live room for id.
func (m *RoomManager) Get(id domain.RoomID) (*core.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	return room, ok
}

// Authorize checks a join attempt's password against the room's hash.
func (m *RoomManager) Authorize(id domain.RoomID, password string) (*core.Room, error) {
	room, ok := m.Get(id)
	if !ok {
		return nil, ErrRoomNotFound
	}
	meta := room.Meta()
	if meta.HasPassword() {
		if err := bcrypt.CompareHashAndPassword(meta.PasswordHash, []byte(password)); err != nil {
			return nil, ErrBadPassword
		}
	}
	return room, nil
}

// List snapshots every live room for the lobby listing.
func (m *RoomManager) List() []domain.RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.RoomInfo, 0, len(m.rooms))
	for _, r := range m.rooms {
		meta := r.Meta()
		out = append(out, domain.RoomInfo{
			ID:          meta.ID,
			Name:        meta.Name,
			Description: meta.Description,
			IsPublic:    meta.IsPublic,
			HasPassword: meta.HasPassword(),
			PlayerCount: r.PlayerCount(),
		})
	}
	return out
}

// StopAll shuts every room down; used on process shutdown.
func (m *RoomManager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.rooms {
		r.Stop()
		delete(m.rooms, id)
	}
}

// onEmpty is invoked by a room actor after it stopped itself.
func (m *RoomManager) onEmpty(id domain.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; ok {
		delete(m.rooms, id)
		log.Info().Str("module", "app.manager").Str("room", string(id)).Msg("empty room disposed")
	}
}
