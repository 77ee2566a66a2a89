package core

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clubroom/clubroom/internal/domain"
	"github.com/clubroom/clubroom/internal/protocol"
)

// newHandlerMap wires one handler function per message kind. Every
// handler performs at most one atomic mutation of room state; protocol,
// authorization and capacity violations are silent no-ops.
func newHandlerMap() map[string]func(*Room, domain.SessionID, []byte) {
	return map[string]func(*Room, domain.SessionID, []byte){
		protocol.KindUpdatePlayerAction: (*Room).handleUpdatePlayerAction,
		protocol.KindUpdatePlayerName:   (*Room).handleUpdatePlayerName,
		protocol.KindUpdatePlayerScale:  (*Room).handleUpdatePlayerScale,
		protocol.KindReadyToConnect:     (*Room).handleReadyToConnect,
		protocol.KindAddChatMessage:     (*Room).handleAddChatMessage,
		protocol.KindPlayerJump:         (*Room).handlePlayerJump,
		protocol.KindPunchPlayer:        (*Room).handlePunchPlayer,

		protocol.KindConnectToMusicBooth:      (*Room).handleConnectToBooth,
		protocol.KindDisconnectFromMusicBooth: (*Room).handleDisconnectFromBooth,

		protocol.KindDJQueueJoin:    (*Room).handleDJQueueJoin,
		protocol.KindDJQueueLeave:   (*Room).handleDJQueueLeave,
		protocol.KindDJPlay:         (*Room).handleDJPlay,
		protocol.KindDJStop:         (*Room).handleDJStop,
		protocol.KindDJSkipTurn:     (*Room).handleDJSkipTurn,
		protocol.KindDJTurnComplete: (*Room).handleDJTurnComplete,

		protocol.KindQueuePlaylistAdd:     (*Room).handleQueuePlaylistAdd,
		protocol.KindQueuePlaylistRemove:  (*Room).handleQueuePlaylistRemove,
		protocol.KindQueuePlaylistReorder: (*Room).handleQueuePlaylistReorder,

		protocol.KindRoomPlaylistAdd:    (*Room).handleRoomPlaylistAdd,
		protocol.KindRoomPlaylistRemove: (*Room).handleRoomPlaylistRemove,
		protocol.KindRoomPlaylistSkip:   (*Room).handleRoomPlaylistSkip,
		protocol.KindRoomPlaylistPrev:   (*Room).handleRoomPlaylistPrev,
		protocol.KindRoomPlaylistPlay:   (*Room).handleRoomPlaylistPlay,

		protocol.KindTimeSyncRequest: (*Room).handleTimeSyncRequest,
	}
}

func decode[T any](data []byte) (T, bool) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		log.Debug().Err(err).Str("module", "core.room").Msg("bad payload")
		var zero T
		return zero, false
	}
	return p, true
}

func (r *Room) handleUpdatePlayerAction(sid domain.SessionID, data []byte) {
	p, ok := decode[protocol.UpdatePlayerAction](data)
	if !ok || p.X == nil || p.Y == nil {
		return
	}
	player, ok := r.state.Players[sid]
	if !ok {
		return
	}

	if !r.validator.Allow(sid, player.X, player.Y, *p.X, *p.Y, r.clock.Now()) {
		return
	}

	textureID := player.TextureID
	if !r.meta.IsPublic && p.TextureID != nil {
		// Public rooms lock the texture chosen at join.
		textureID = domain.SanitizeTextureID(*p.TextureID)
	}
	animID := player.AnimID
	if p.AnimID != nil {
		animID = domain.SanitizeAnimID(*p.AnimID, textureID)
	}

	player.X = *p.X
	player.Y = *p.Y
	player.TextureID = textureID
	player.AnimID = animID

	r.broadcastExcept(sid, protocol.KindUpdatePlayerAction, protocol.PlayerActionBroadcast{
		SessionID: sid,
		X:         player.X,
		Y:         player.Y,
		TextureID: player.TextureID,
		AnimID:    player.AnimID,
	})
}

func (r *Room) handleUpdatePlayerName(sid domain.SessionID, data []byte) {
	if r.meta.IsPublic {
		return
	}
	p, ok := decode[protocol.UpdatePlayerName](data)
	if !ok {
		return
	}
	player, exists := r.state.Players[sid]
	if !exists {
		return
	}
	if err := player.SetName(p.Name); err != nil {
		return
	}
	r.broadcastExcept(sid, protocol.KindPlayerJoined, protocol.PlayerJoined{SessionID: sid, Player: player})
}

func (r *Room) handleUpdatePlayerScale(sid domain.SessionID, data []byte) {
	p, ok := decode[protocol.UpdatePlayerScale](data)
	if !ok {
		return
	}
	player, exists := r.state.Players[sid]
	if !exists {
		return
	}
	scale := domain.DefaultScale
	if p.Scale != nil {
		scale = *p.Scale
		if scale < 1 {
			scale = 1
		}
		if scale > 255 {
			scale = 255
		}
	}
	player.Scale = uint8(scale)

	r.broadcastExcept(sid, protocol.KindUpdatePlayerAction, protocol.PlayerActionBroadcast{
		SessionID: sid,
		X:         player.X,
		Y:         player.Y,
		TextureID: player.TextureID,
		AnimID:    player.AnimID,
		Scale:     player.Scale,
	})
}

func (r *Room) handleReadyToConnect(sid domain.SessionID, _ []byte) {
	if player, ok := r.state.Players[sid]; ok {
		player.ReadyToConnect = true
	}
}

func (r *Room) handleAddChatMessage(sid domain.SessionID, data []byte) {
	p, ok := decode[protocol.AddChatMessage](data)
	if !ok || p.Content == "" || len(p.Content) > domain.MaxContentLen {
		return
	}
	player, exists := r.state.Players[sid]
	if !exists {
		return
	}

	r.state.AppendChat(domain.ChatMessage{
		Author:    player.Name,
		CreatedAt: r.nowMs(),
		Content:   p.Content,
	})

	r.broadcastExcept(sid, protocol.KindAddChatMessage, protocol.ChatBroadcast{
		ClientID: sid,
		Content:  p.Content,
	})
}

func (r *Room) handlePlayerJump(sid domain.SessionID, _ []byte) {
	if _, ok := r.state.Players[sid]; !ok {
		return
	}
	r.broadcastExcept(sid, protocol.KindPlayerJump, protocol.PlayerJumpBroadcast{SessionID: sid})
}

func (r *Room) handleConnectToBooth(sid domain.SessionID, data []byte) {
	p, ok := decode[protocol.BoothIndex](data)
	if !ok || p.MusicBoothIndex == nil {
		return
	}
	idx := *p.MusicBoothIndex
	if idx < 0 || idx >= len(r.state.Booths) {
		return
	}
	if _, exists := r.state.Players[sid]; !exists {
		return
	}

	booth := r.state.Booths[idx]
	if !booth.Occupy(sid) {
		return
	}
	log.Debug().Str("module", "core.room").Str("sid", string(sid)).Int("booth", idx).Msg("booth occupied")

	r.broadcastBooths()

	// A live occupant suppresses the ambient fallback.
	if r.meta.IsPublic && idx == 0 {
		r.stopAmbientIfNeeded()
	}
}

func (r *Room) handleDisconnectFromBooth(sid domain.SessionID, data []byte) {
	p, ok := decode[protocol.BoothIndex](data)
	if !ok || p.MusicBoothIndex == nil {
		return
	}
	idx := *p.MusicBoothIndex
	if idx < 0 || idx >= len(r.state.Booths) {
		return
	}
	r.disconnectBooth(sid, idx)
}

// disconnectBooth frees the slot and resolves what should be audible
// afterwards. When the DJ rotation is active it owns all music state,
// so only the slot changes here.
func (r *Room) disconnectBooth(sid domain.SessionID, idx int) {
	booth := r.state.Booths[idx]
	if !booth.Vacate(sid) {
		return
	}
	r.broadcastBooths()

	if len(r.state.DJQueue) > 0 || r.state.CurrentDJ != "" {
		return
	}

	if r.meta.IsPublic && booth.IsEmpty() {
		r.startAmbientIfNeeded()
		return
	}

	if r.state.Stream.CurrentBooth == idx && r.state.Stream.Status == domain.StreamPlaying {
		r.stopStream()
	}
}

func (r *Room) broadcastBooths() {
	r.broadcast(protocol.KindMusicBoothsUpdated, protocol.MusicBoothsUpdated{MusicBooths: r.state.Booths})
}

func (r *Room) handleTimeSyncRequest(sid domain.SessionID, data []byte) {
	p, ok := decode[protocol.TimeSyncRequest](data)
	if !ok || p.ClientSentAtMs == nil {
		return
	}
	r.sendTo(sid, protocol.KindTimeSyncResponse, protocol.TimeSyncResponse{
		ClientSentAtMs: *p.ClientSentAtMs,
		ServerNowMs:    r.nowMs(),
	})
}

func (r *Room) handleQueuePlaylistAdd(sid domain.SessionID, data []byte) {
	p, ok := decode[protocol.QueuePlaylistAdd](data)
	if !ok || p.Link == "" || p.Title == "" {
		return
	}
	player, exists := r.state.Players[sid]
	if !exists {
		return
	}

	track := &domain.QueueTrack{
		ID:        uuid.NewString(),
		Title:     p.Title,
		Link:      p.Link,
		Duration:  p.Duration,
		AddedAtMs: r.nowMs(),
	}

	// While the sender's head track is live, new adds slot in right
	// behind it; otherwise they go to the front.
	headLive := r.state.CurrentDJ == sid &&
		r.state.Stream.Status == domain.StreamPlaying &&
		len(player.Queue) > 0
	if headLive {
		player.Queue = append(player.Queue[:1], append([]*domain.QueueTrack{track}, player.Queue[1:]...)...)
	} else {
		player.Queue = append([]*domain.QueueTrack{track}, player.Queue...)
	}

	if r.prefetch != nil {
		r.prefetch.Prefetch(p.Link)
	}

	r.sendTo(sid, protocol.KindQueuePlaylistUpdated, protocol.QueuePlaylistUpdated{Items: player.Queue})

	// Fresh content ends a rotation's wait-for-content state.
	if r.state.CurrentDJ == "" && len(r.state.DJQueue) > 0 {
		if next := r.findNextDJWithUnplayed(); next != nil {
			r.promoteDJ(next)
			r.broadcastDJQueue()
		}
	}
}

func (r *Room) handleQueuePlaylistRemove(sid domain.SessionID, data []byte) {
	p, ok := decode[protocol.QueuePlaylistRemove](data)
	if !ok || p.ItemID == "" {
		return
	}
	player, exists := r.state.Players[sid]
	if !exists {
		return
	}

	idx := -1
	for i, t := range player.Queue {
		if t.ID == p.ItemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	if idx == 0 && r.state.CurrentDJ == sid && r.state.Stream.Status == domain.StreamPlaying {
		return // the live head track cannot be removed
	}

	player.Queue = append(player.Queue[:idx], player.Queue[idx+1:]...)
	r.sendTo(sid, protocol.KindQueuePlaylistUpdated, protocol.QueuePlaylistUpdated{Items: player.Queue})
}

func (r *Room) handleQueuePlaylistReorder(sid domain.SessionID, data []byte) {
	p, ok := decode[protocol.QueuePlaylistReorder](data)
	if !ok || p.FromIndex == nil || p.ToIndex == nil {
		return
	}
	player, exists := r.state.Players[sid]
	if !exists {
		return
	}

	from, to := *p.FromIndex, *p.ToIndex
	if from == to || from < 0 || to < 0 || from >= len(player.Queue) || to >= len(player.Queue) {
		return
	}
	if r.state.CurrentDJ == sid && r.state.Stream.Status == domain.StreamPlaying && (from == 0 || to == 0) {
		return // the live head track cannot be moved
	}

	item := player.Queue[from]
	player.Queue = append(player.Queue[:from], player.Queue[from+1:]...)
	rest := append([]*domain.QueueTrack{item}, player.Queue[to:]...)
	player.Queue = append(player.Queue[:to], rest...)

	r.sendTo(sid, protocol.KindQueuePlaylistUpdated, protocol.QueuePlaylistUpdated{Items: player.Queue})
}
