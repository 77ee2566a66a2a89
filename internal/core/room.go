package core

import (
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/clubroom/clubroom/internal/domain"
	"github.com/clubroom/clubroom/internal/protocol"
)

// Room is an actor: a single goroutine owns all state and drains an
// inbox of events (client commands, joins, leaves, timer callbacks), so
// every mutation happens in arrival order with no interleaving. Timers
// re-enter through the inbox and re-validate state when they run.
type Room struct {
	meta  *domain.Room
	cfg   Config
	clock clockwork.Clock

	state     *State
	conns     map[domain.SessionID]SignalConnection
	validator *MovementValidator
	handlers  map[string]func(*Room, domain.SessionID, []byte)
	policy    Policy
	prefetch  Prefetcher

	inbox chan func(*Room)
	done  chan struct{}
	once  sync.Once

	onEmpty func(domain.RoomID)

	watchdog clockwork.Timer

	punchSeq      uint64
	lastPunchAtMs map[domain.SessionID]int64
	dropCounts    map[domain.SessionID]int

	playerCount atomic.Int64
}

// NewRoom builds a room around its metadata. The caller must Start it.
func NewRoom(meta *domain.Room, cfg Config, clock clockwork.Clock, policy Policy, prefetch Prefetcher, onEmpty func(domain.RoomID)) *Room {
	r := &Room{
		meta:          meta,
		cfg:           cfg,
		clock:         clock,
		state:         newState(1, cfg.ChatHistoryLimit),
		conns:         make(map[domain.SessionID]SignalConnection),
		validator:     NewMovementValidator(cfg.MoveMaxSpeedPxPerSec, cfg.MoveSlackPx, cfg.MoveMinInterval),
		policy:        policy,
		prefetch:      prefetch,
		inbox:         make(chan func(*Room), cfg.InboxSize),
		done:          make(chan struct{}),
		onEmpty:       onEmpty,
		lastPunchAtMs: make(map[domain.SessionID]int64),
		dropCounts:    make(map[domain.SessionID]int),
	}
	r.handlers = newHandlerMap()
	return r
}

func (r *Room) Meta() *domain.Room { return r.meta }

// PlayerCount is safe to call from any goroutine.
func (r *Room) PlayerCount() int { return int(r.playerCount.Load()) }

// Start launches the room goroutine.
func (r *Room) Start() {
	go r.run()
}

// Stop shuts the room down, cancelling all timers. Idempotent.
func (r *Room) Stop() {
	r.once.Do(func() { close(r.done) })
}

func (r *Room) run() {
	heartbeat := r.clock.NewTicker(r.cfg.HeartbeatInterval)
	defer heartbeat.Stop()
	ambient := r.clock.NewTicker(r.cfg.AmbientCheckInterval)
	defer ambient.Stop()
	defer r.clearWatchdog()

	for {
		select {
		case <-r.done:
			log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Msg("room stopped")
			return
		case ev := <-r.inbox:
			ev(r)
		case <-heartbeat.Chan():
			r.broadcastStreamTick()
		case <-ambient.Chan():
			r.startAmbientIfNeeded()
		}
	}
}

// post hands an event to the room goroutine. Events posted after Stop
// are discarded.
func (r *Room) post(fn func(*Room)) {
	select {
	case r.inbox <- fn:
	case <-r.done:
	}
}

func (r *Room) nowMs() int64 { return r.clock.Now().UnixMilli() }

// Join registers a connection and creates (or re-associates) its player.
func (r *Room) Join(sid domain.SessionID, conn SignalConnection, opts JoinOptions) {
	r.post(func(r *Room) { r.addPlayer(sid, conn, opts) })
}

// Leave removes the player from every shared structure it may occupy.
// Processed in order, so no later event can observe a ghost. The leave
// only applies when conn is still the session's bound transport; a
// replaced connection's read loop reports its leave late and must not
// tear down the re-associated player.
func (r *Room) Leave(sid domain.SessionID, conn SignalConnection) {
	r.post(func(r *Room) { r.removePlayerIfConn(sid, conn) })
}

func (r *Room) removePlayerIfConn(sid domain.SessionID, conn SignalConnection) {
	if cur, ok := r.conns[sid]; !ok || cur != conn {
		return
	}
	r.removePlayer(sid)
}

// Dispatch routes one inbound client message. Unknown kinds and
// malformed payloads are dropped; a bad message must never take the
// session down.
func (r *Room) Dispatch(sid domain.SessionID, kind string, data []byte) {
	r.post(func(r *Room) {
		h, ok := r.handlers[kind]
		if !ok {
			log.Debug().Str("module", "core.room").Str("kind", kind).Msg("unknown message kind")
			return
		}
		h(r, sid, data)
	})
}

func (r *Room) addPlayer(sid domain.SessionID, conn SignalConnection, opts JoinOptions) {
	if _, exists := r.state.Players[sid]; exists {
		// Stale connection for the same session: replace transport only.
		if old, ok := r.conns[sid]; ok && old != conn {
			old.Close()
		}
		r.conns[sid] = conn
		r.sendJoinData(sid)
		return
	}

	player := domain.NewPlayer()
	player.ID = opts.PlayerID

	name := opts.Name
	if name == "" {
		short := opts.PlayerID
		if short == "" {
			short = string(sid)
		}
		if len(short) > 8 {
			short = short[:8]
		}
		name = "mutant-" + short
	}
	if err := player.SetName(name); err != nil {
		player.Name = "mutant"
	}
	if opts.TextureID != nil {
		player.TextureID = domain.SanitizeTextureID(*opts.TextureID)
	}

	r.state.Players[sid] = player
	r.conns[sid] = conn
	r.validator.Touch(sid, r.clock.Now())
	r.playerCount.Store(int64(len(r.state.Players)))

	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Str("sid", string(sid)).Str("name", player.Name).Msg("player joined")

	r.sendJoinData(sid)
	r.broadcastExcept(sid, protocol.KindPlayerJoined, protocol.PlayerJoined{SessionID: sid, Player: player})

	r.startAmbientIfNeeded()
}

// sendJoinData ships the room metadata, the full state snapshot and,
// when a stream is live, a catch-up start with a per-recipient offset.
func (r *Room) sendJoinData(sid domain.SessionID) {
	seed := (*int)(nil)
	if r.meta.IsPublic {
		s := r.meta.BackgroundSeed
		seed = &s
	}
	r.sendTo(sid, protocol.KindSendRoomData, protocol.RoomData{
		ID:             r.meta.ID,
		Name:           r.meta.Name,
		Description:    r.meta.Description,
		BackgroundSeed: seed,
	})
	r.sendTo(sid, protocol.KindRoomState, r.state.Snapshot())

	if r.state.Stream.Status == domain.StreamPlaying {
		offset := float64(r.nowMs()-r.state.Stream.StartTime) / 1000
		r.sendTo(sid, protocol.KindStartMusicStream, protocol.StartMusicStream{
			MusicStream: r.state.Stream,
			Offset:      offset,
		})
	}
}

func (r *Room) removePlayer(sid domain.SessionID) {
	if _, ok := r.state.Players[sid]; !ok {
		return
	}

	for i, booth := range r.state.Booths {
		if booth.Contains(sid) {
			r.disconnectBooth(sid, i)
		}
	}
	if r.state.queueIndex(sid) >= 0 {
		r.removeDJFromQueue(sid)
	}

	delete(r.state.Players, sid)
	delete(r.conns, sid)
	delete(r.lastPunchAtMs, sid)
	delete(r.dropCounts, sid)
	r.validator.Forget(sid)
	r.playerCount.Store(int64(len(r.state.Players)))

	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Str("sid", string(sid)).Msg("player left")

	r.broadcast(protocol.KindPlayerLeft, protocol.PlayerLeft{SessionID: sid})

	if len(r.state.Players) == 0 && r.meta.AutoDispose {
		r.Stop()
		if r.onEmpty != nil {
			go r.onEmpty(r.meta.ID)
		}
	}
}

// kick closes a slow consumer's connection and removes its player.
// Runs on the room goroutine.
func (r *Room) kick(sid domain.SessionID) {
	if conn, ok := r.conns[sid]; ok {
		conn.Close()
	}
	r.removePlayer(sid)
}

func (r *Room) sendTo(sid domain.SessionID, kind string, payload any) {
	conn, ok := r.conns[sid]
	if !ok {
		return
	}
	frame, err := protocol.Encode(kind, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "core.room").Str("kind", kind).Msg("encode")
		return
	}
	r.deliver(sid, conn, frame)
}

func (r *Room) broadcast(kind string, payload any) {
	r.broadcastExcept("", kind, payload)
}

// broadcastExcept fans out to every connection but except. Sends are
// fire-and-forget and never block the loop; consecutive backpressure
// failures are escalated through the policy.
func (r *Room) broadcastExcept(except domain.SessionID, kind string, payload any) {
	frame, err := protocol.Encode(kind, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "core.room").Str("kind", kind).Msg("encode")
		return
	}
	for sid, conn := range r.conns {
		if sid == except {
			continue
		}
		r.deliver(sid, conn, frame)
	}
}

func (r *Room) deliver(sid domain.SessionID, conn SignalConnection, frame Frame) {
	if err := conn.TrySend(frame); err != nil {
		r.dropCounts[sid]++
		if r.policy == nil {
			return
		}
		switch r.policy.OnBackpressure(sid, r.dropCounts[sid]) {
		case KickMember:
			log.Warn().Str("module", "core.room").Str("sid", string(sid)).Msg("kicking slow consumer")
			r.kick(sid)
		case DropFrame, NoAction:
		}
		return
	}
	r.dropCounts[sid] = 0
}
