package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clubroom/clubroom/internal/domain"
	"github.com/clubroom/clubroom/internal/protocol"
)

// The server is the sole writer of the music stream descriptor. Every
// state change broadcasts the full descriptor plus a per-recipient
// offset; a periodic heartbeat lets drifted clients re-seek without
// asking.

// playTrackForCurrentDJ reads the current DJ's head track, stamps the
// stream and announces it. StreamID increments so clients discard
// heartbeats and timers from the previous track.
func (r *Room) playTrackForCurrentDJ() {
	djID := r.state.CurrentDJ
	if djID == "" {
		return
	}
	player, ok := r.state.Players[djID]
	if !ok || len(player.Queue) == 0 {
		return
	}
	track := player.Queue[0]

	stream := &r.state.Stream
	stream.Status = domain.StreamPlaying
	stream.StreamID++
	stream.CurrentLink = track.Link
	stream.CurrentTitle = track.Title
	stream.CurrentDj = domain.DJUserInfo{Name: player.Name, SessionID: djID}
	stream.StartTime = r.nowMs()
	stream.Duration = track.Duration
	stream.IsRoomPlaylist = false
	stream.IsAmbient = false

	log.Info().Str("module", "core.stream").Str("dj", string(djID)).Str("title", track.Title).Msg("track started")

	r.broadcast(protocol.KindStartMusicStream, protocol.StartMusicStream{MusicStream: *stream, Offset: 0})
	r.broadcast(protocol.KindDJPlayStarted, protocol.DJPlayStarted{DJSessionID: djID, TrackID: track.ID})

	r.armWatchdog(track.Duration)
}

// stopStream resets the descriptor to waiting and announces the stop.
func (r *Room) stopStream() {
	r.clearWatchdog()
	r.state.Stream.Stop(r.nowMs())
	r.broadcast(protocol.KindStopMusicStream, struct{}{})
}

// broadcastStreamTick is the periodic heartbeat: {streamId, startTime,
// serverNow} while playing, so late joiners and drifted clients can
// re-seek. Nothing is sent while waiting.
func (r *Room) broadcastStreamTick() {
	stream := &r.state.Stream
	if stream.Status != domain.StreamPlaying || stream.CurrentLink == "" {
		return
	}
	r.broadcast(protocol.KindMusicStreamTick, protocol.MusicStreamTick{
		StreamID:    stream.StreamID,
		StartTime:   stream.StartTime,
		ServerNowMs: r.nowMs(),
	})
}

// armWatchdog schedules the auto-advance that fires when a client never
// reports turn completion. The expected stream id travels with the
// timer; a fire for a stale stream is a no-op.
func (r *Room) armWatchdog(durationSec float64) {
	r.clearWatchdog()

	trackLen := time.Duration(durationSec * float64(time.Second))
	if trackLen < r.cfg.WatchdogMinTrack {
		trackLen = r.cfg.WatchdogMinTrack
	}
	timeout := trackLen + r.cfg.WatchdogBuffer

	expected := r.state.Stream.StreamID
	r.watchdog = r.clock.AfterFunc(timeout, func() {
		r.post(func(r *Room) { r.watchdogFire(expected) })
	})
}

func (r *Room) clearWatchdog() {
	if r.watchdog != nil {
		r.watchdog.Stop()
		r.watchdog = nil
	}
}

// watchdogFire re-validates against current state: the track may have
// changed or stopped between scheduling and firing.
func (r *Room) watchdogFire(expectedStreamID int64) {
	stream := &r.state.Stream
	if stream.StreamID != expectedStreamID {
		return
	}
	if stream.Status != domain.StreamPlaying || stream.CurrentLink == "" {
		return
	}

	if stream.IsRoomPlaylist {
		log.Info().Str("module", "core.stream").Msg("track duration exceeded, advancing room playlist")
		r.advanceRoomPlaylist()
		return
	}

	djID := r.state.CurrentDJ
	if djID == "" {
		return
	}
	log.Info().Str("module", "core.stream").Str("dj", string(djID)).Msg("track duration exceeded, auto-advancing")
	r.handleDJTurnComplete(djID, nil)
}

// Ambient fallback: a public room with players, an empty booth 0 and no
// live DJ stream plays a fixed fallback video so the room is never
// silent. Suppressed the instant anyone takes the booth.

func (r *Room) startAmbientIfNeeded() {
	if !r.meta.IsPublic {
		return
	}
	if len(r.state.Booths) == 0 || !r.state.Booths[0].IsEmpty() {
		return
	}
	if len(r.state.Players) == 0 {
		return
	}
	stream := &r.state.Stream
	if stream.IsAmbient && stream.Status == domain.StreamPlaying {
		return
	}
	if stream.Status == domain.StreamPlaying && !stream.IsAmbient {
		return
	}

	stream.IsAmbient = true
	stream.CurrentBooth = 0
	stream.Status = domain.StreamPlaying
	stream.StreamID++
	stream.CurrentLink = r.cfg.AmbientVideoID
	stream.CurrentTitle = ""
	stream.CurrentVisualURL = ""
	stream.CurrentTrackMessage = ""
	stream.CurrentDj = domain.DJUserInfo{}
	stream.StartTime = r.nowMs()
	stream.Duration = 0
	stream.IsRoomPlaylist = false

	log.Info().Str("module", "core.stream").Str("room", string(r.meta.ID)).Msg("ambient stream started")
	r.broadcast(protocol.KindStartMusicStream, protocol.StartMusicStream{MusicStream: *stream, Offset: 0})
}

func (r *Room) stopAmbientIfNeeded() {
	if !r.state.Stream.IsAmbient {
		return
	}
	r.stopStream()
}

// Shared room playlist control.

func (r *Room) handleRoomPlaylistAdd(sid domain.SessionID, data []byte) {
	p, ok := decode[protocol.RoomPlaylistAdd](data)
	if !ok || p.Link == "" || p.Title == "" {
		return
	}
	if _, exists := r.state.Players[sid]; !exists {
		return
	}

	r.state.RoomPlaylist = append(r.state.RoomPlaylist, &domain.RoomPlaylistItem{
		ID:               uuid.NewString(),
		Title:            p.Title,
		Link:             p.Link,
		Duration:         p.Duration,
		AddedAtMs:        r.nowMs(),
		AddedBySessionID: sid,
	})

	if r.prefetch != nil {
		r.prefetch.Prefetch(p.Link)
	}
	r.broadcastRoomPlaylist()
}

func (r *Room) handleRoomPlaylistRemove(sid domain.SessionID, data []byte) {
	p, ok := decode[protocol.RoomPlaylistRemove](data)
	if !ok || p.ID == "" {
		return
	}

	idx := -1
	for i, item := range r.state.RoomPlaylist {
		if item.ID == p.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	// Items can only be removed by whoever added them.
	if r.state.RoomPlaylist[idx].AddedBySessionID != sid {
		return
	}

	r.state.RoomPlaylist = append(r.state.RoomPlaylist[:idx], r.state.RoomPlaylist[idx+1:]...)

	stream := &r.state.Stream
	if stream.IsRoomPlaylist && stream.RoomPlaylistIndex > idx {
		stream.RoomPlaylistIndex--
	}
	r.broadcastRoomPlaylist()
}

// handleRoomPlaylistPlay starts shared playback. The room playlist only
// has the floor while no DJ rotation is active.
func (r *Room) handleRoomPlaylistPlay(sid domain.SessionID, _ []byte) {
	if len(r.state.DJQueue) > 0 || r.state.CurrentDJ != "" {
		return
	}
	if r.state.Stream.Status == domain.StreamPlaying && !r.state.Stream.IsAmbient {
		return
	}
	player, exists := r.state.Players[sid]
	if !exists {
		return
	}
	r.playRoomPlaylist(domain.DJUserInfo{Name: player.Name, SessionID: sid}, r.state.Stream.RoomPlaylistIndex)
}

func (r *Room) handleRoomPlaylistSkip(sid domain.SessionID, _ []byte) {
	if !r.roomPlaylistLive(sid) {
		return
	}
	r.playRoomPlaylist(r.state.Stream.CurrentDj, r.state.Stream.RoomPlaylistIndex+1)
}

func (r *Room) handleRoomPlaylistPrev(sid domain.SessionID, _ []byte) {
	if !r.roomPlaylistLive(sid) {
		return
	}
	r.playRoomPlaylist(r.state.Stream.CurrentDj, r.state.Stream.RoomPlaylistIndex-1)
}

func (r *Room) roomPlaylistLive(sid domain.SessionID) bool {
	if _, exists := r.state.Players[sid]; !exists {
		return false
	}
	return r.state.Stream.IsRoomPlaylist && r.state.Stream.Status == domain.StreamPlaying
}

// advanceRoomPlaylist moves to the next item, keeping the initiator
// snapshot; called by the watchdog when a shared track runs out.
func (r *Room) advanceRoomPlaylist() {
	r.playRoomPlaylist(r.state.Stream.CurrentDj, r.state.Stream.RoomPlaylistIndex+1)
}

// playRoomPlaylist stamps the stream from the shared playlist at index
// (wrapping both directions) and announces it.
func (r *Room) playRoomPlaylist(dj domain.DJUserInfo, index int) {
	n := len(r.state.RoomPlaylist)
	if n == 0 {
		r.stopStream()
		return
	}
	index = ((index % n) + n) % n
	item := r.state.RoomPlaylist[index]

	stream := &r.state.Stream
	stream.Status = domain.StreamPlaying
	stream.StreamID++
	stream.CurrentLink = item.Link
	stream.CurrentTitle = item.Title
	stream.CurrentDj = dj
	stream.StartTime = r.nowMs()
	stream.Duration = item.Duration
	stream.IsRoomPlaylist = true
	stream.RoomPlaylistIndex = index
	stream.IsAmbient = false

	log.Info().Str("module", "core.stream").Int("index", index).Str("title", item.Title).Msg("room playlist track started")

	r.broadcast(protocol.KindStartMusicStream, protocol.StartMusicStream{MusicStream: *stream, Offset: 0})
	r.broadcastRoomPlaylist()
	r.armWatchdog(item.Duration)
}

func (r *Room) broadcastRoomPlaylist() {
	r.broadcast(protocol.KindRoomPlaylistUpdated, protocol.RoomPlaylistUpdated{
		Items: r.state.RoomPlaylist,
		Index: r.state.Stream.RoomPlaylistIndex,
	})
}
