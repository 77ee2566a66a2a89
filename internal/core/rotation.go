package core

import (
	"github.com/rs/zerolog/log"

	"github.com/clubroom/clubroom/internal/domain"
	"github.com/clubroom/clubroom/internal/protocol"
)

// DJ rotation state machine. All transitions run on the room goroutine;
// authorization failures are silent no-ops because two clients acting
// on stale UI is a normal race, not an error.

func (r *Room) handleDJQueueJoin(sid domain.SessionID, _ []byte) {
	player, ok := r.state.Players[sid]
	if !ok {
		return
	}
	if r.state.queueIndex(sid) >= 0 {
		return // idempotent double-join
	}

	entry := &domain.DJQueueEntry{
		SessionID:     sid,
		Name:          player.Name,
		JoinedAtMs:    r.nowMs(),
		QueuePosition: len(r.state.DJQueue),
	}
	r.state.DJQueue = append(r.state.DJQueue, entry)

	log.Info().Str("module", "core.rotation").Str("sid", string(sid)).Int("position", entry.QueuePosition).Msg("dj queue join")

	if len(r.state.DJQueue) == 1 {
		// First entrant takes the floor immediately.
		r.state.CurrentDJ = sid
		if player.HasUnplayed() {
			r.playTrackForCurrentDJ()
		}
	} else if r.state.CurrentDJ == "" && player.HasUnplayed() {
		r.state.CurrentDJ = sid
		r.playTrackForCurrentDJ()
	}

	// A forming rotation owns the music; shared playback yields to it.
	if r.state.Stream.IsRoomPlaylist && r.state.Stream.Status == domain.StreamPlaying {
		r.stopStream()
	}

	r.broadcastDJQueue()
}

func (r *Room) handleDJQueueLeave(sid domain.SessionID, _ []byte) {
	r.removeDJFromQueue(sid)
}

func (r *Room) handleDJPlay(sid domain.SessionID, _ []byte) {
	if r.state.CurrentDJ != sid {
		return
	}
	player, ok := r.state.Players[sid]
	if !ok || !player.HasUnplayed() {
		return
	}
	if r.state.Stream.Status == domain.StreamPlaying && r.state.Stream.CurrentLink != "" {
		return // already live
	}
	r.playTrackForCurrentDJ()
}

func (r *Room) handleDJStop(sid domain.SessionID, _ []byte) {
	if r.state.CurrentDJ != sid {
		return
	}
	if r.state.Stream.Status != domain.StreamPlaying || r.state.Stream.CurrentLink == "" {
		return
	}
	r.stopStream()
}

func (r *Room) handleDJSkipTurn(sid domain.SessionID, _ []byte) {
	if r.state.CurrentDJ != sid {
		return
	}
	if player, ok := r.state.Players[sid]; ok {
		r.markTrackPlayed(player)
		r.sendTo(sid, protocol.KindQueuePlaylistUpdated, protocol.QueuePlaylistUpdated{Items: player.Queue})
	}
	log.Info().Str("module", "core.rotation").Str("sid", string(sid)).Msg("dj skipped turn")
	r.advanceRotation()
}

func (r *Room) handleDJTurnComplete(sid domain.SessionID, _ []byte) {
	if r.state.CurrentDJ != sid {
		return
	}
	player, ok := r.state.Players[sid]
	if !ok {
		r.advanceRotation()
		return
	}
	r.markTrackPlayed(player)
	r.sendTo(sid, protocol.KindQueuePlaylistUpdated, protocol.QueuePlaylistUpdated{Items: player.Queue})
	r.advanceRotation()
}

// markTrackPlayed flags the head track as played and rotates it to the
// tail, preserving history.
func (r *Room) markTrackPlayed(player *domain.Player) {
	if len(player.Queue) == 0 {
		return
	}
	track := player.Queue[0]
	track.Played = true
	player.Queue = append(player.Queue[1:], track)
}

// findNextDJWithUnplayed scans the rotation front-to-back for the first
// entry whose player still has an unplayed track. Played history kept
// at the queue tail holds a player's rotation slot but never wins the
// floor; promoting on it would replay the same track forever.
func (r *Room) findNextDJWithUnplayed() *domain.DJQueueEntry {
	for _, entry := range r.state.DJQueue {
		if player, ok := r.state.Players[entry.SessionID]; ok && player.HasUnplayed() {
			return entry
		}
	}
	return nil
}

// promoteDJ moves entry to the front of the rotation and starts its
// head track.
func (r *Room) promoteDJ(next *domain.DJQueueEntry) {
	if idx := r.state.queueIndex(next.SessionID); idx > 0 {
		r.state.DJQueue = append(r.state.DJQueue[:idx], r.state.DJQueue[idx+1:]...)
		r.state.DJQueue = append([]*domain.DJQueueEntry{next}, r.state.DJQueue...)
		r.state.renumberQueue()
	}
	r.state.CurrentDJ = next.SessionID
	log.Info().Str("module", "core.rotation").Str("sid", string(next.SessionID)).Msg("new current dj")
	r.playTrackForCurrentDJ()
}

// advanceRotation pops the front entry, re-appends it when its player
// still has tracks, then promotes the first entry with content. An
// empty result is a deliberate wait-for-content state, not an error.
func (r *Room) advanceRotation() {
	if len(r.state.DJQueue) == 0 {
		r.state.CurrentDJ = ""
		r.stopStream()
		r.broadcastDJQueue()
		return
	}

	front := r.state.DJQueue[0]
	frontPlayer := r.state.Players[front.SessionID]
	r.state.DJQueue = r.state.DJQueue[1:]

	if frontPlayer != nil && len(frontPlayer.Queue) > 0 {
		r.state.DJQueue = append(r.state.DJQueue, &domain.DJQueueEntry{
			SessionID:     front.SessionID,
			Name:          front.Name,
			JoinedAtMs:    r.nowMs(),
			QueuePosition: len(r.state.DJQueue),
		})
	} else {
		log.Debug().Str("module", "core.rotation").Str("sid", string(front.SessionID)).Msg("dropped from rotation")
	}
	r.state.renumberQueue()

	if next := r.findNextDJWithUnplayed(); next != nil {
		r.promoteDJ(next)
	} else {
		r.state.CurrentDJ = ""
		r.stopStream()
		log.Info().Str("module", "core.rotation").Msg("no dj with unplayed tracks, waiting")
	}

	r.broadcastDJQueue()
}

// removeDJFromQueue handles both voluntary leave and disconnect. When
// the departing entry is the live DJ, playback stops first, then the
// next entry with tracks is promoted to the front.
func (r *Room) removeDJFromQueue(sid domain.SessionID) {
	idx := r.state.queueIndex(sid)
	if idx < 0 {
		return
	}

	wasCurrent := r.state.CurrentDJ == sid
	wasPlaying := r.state.Stream.Status == domain.StreamPlaying

	if wasCurrent && wasPlaying {
		log.Info().Str("module", "core.rotation").Str("sid", string(sid)).Msg("live dj left, stopping playback")
		r.stopStream()
	}

	r.state.DJQueue = append(r.state.DJQueue[:idx], r.state.DJQueue[idx+1:]...)
	r.state.renumberQueue()

	if wasCurrent {
		if next := r.findNextDJWithUnplayed(); next != nil {
			r.promoteDJ(next)
		} else {
			r.state.CurrentDJ = ""
		}
	}

	r.broadcastDJQueue()
}

func (r *Room) broadcastDJQueue() {
	r.broadcast(protocol.KindDJQueueUpdated, protocol.DJQueueUpdated{
		DJQueue:            r.state.DJQueue,
		CurrentDjSessionID: r.state.CurrentDJ,
	})
}
