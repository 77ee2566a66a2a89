// Package protocol defines the wire messages exchanged over a room's
// persistent client connection. Envelopes are JSON: {"type": ..., "data": ...}.
package protocol

import (
	"encoding/json"

	"github.com/clubroom/clubroom/internal/domain"
)

// Client → server message kinds.
const (
	KindUpdatePlayerAction = "UPDATE_PLAYER_ACTION"
	KindUpdatePlayerName   = "UPDATE_PLAYER_NAME"
	KindUpdatePlayerScale  = "UPDATE_PLAYER_SCALE"
	KindReadyToConnect     = "READY_TO_CONNECT"
	KindAddChatMessage     = "ADD_CHAT_MESSAGE"
	KindPlayerJump         = "PLAYER_JUMP"
	KindPunchPlayer        = "PUNCH_PLAYER"

	KindConnectToMusicBooth      = "CONNECT_TO_MUSIC_BOOTH"
	KindDisconnectFromMusicBooth = "DISCONNECT_FROM_MUSIC_BOOTH"

	KindDJQueueJoin    = "DJ_QUEUE_JOIN"
	KindDJQueueLeave   = "DJ_QUEUE_LEAVE"
	KindDJPlay         = "DJ_PLAY"
	KindDJStop         = "DJ_STOP"
	KindDJSkipTurn     = "DJ_SKIP_TURN"
	KindDJTurnComplete = "DJ_TURN_COMPLETE"

	KindQueuePlaylistAdd     = "ROOM_QUEUE_PLAYLIST_ADD"
	KindQueuePlaylistRemove  = "ROOM_QUEUE_PLAYLIST_REMOVE"
	KindQueuePlaylistReorder = "ROOM_QUEUE_PLAYLIST_REORDER"

	KindRoomPlaylistAdd    = "ROOM_PLAYLIST_ADD"
	KindRoomPlaylistRemove = "ROOM_PLAYLIST_REMOVE"
	KindRoomPlaylistSkip   = "ROOM_PLAYLIST_SKIP"
	KindRoomPlaylistPrev   = "ROOM_PLAYLIST_PREV"
	KindRoomPlaylistPlay   = "ROOM_PLAYLIST_PLAY"

	KindTimeSyncRequest = "TIME_SYNC_REQUEST"
)

// Server → client message kinds.
const (
	KindTimeSyncResponse = "TIME_SYNC_RESPONSE"
	KindSendRoomData     = "SEND_ROOM_DATA"
	KindRoomState        = "ROOM_STATE"
	KindPlayerJoined     = "PLAYER_JOINED"
	KindPlayerLeft       = "PLAYER_LEFT"

	KindStartMusicStream = "START_MUSIC_STREAM"
	KindStopMusicStream  = "STOP_MUSIC_STREAM"
	KindMusicStreamTick  = "MUSIC_STREAM_TICK"

	KindMusicBoothsUpdated   = "MUSIC_BOOTHS_UPDATED"
	KindDJQueueUpdated       = "DJ_QUEUE_UPDATED"
	KindDJPlayStarted        = "DJ_PLAY_STARTED"
	KindQueuePlaylistUpdated = "ROOM_QUEUE_PLAYLIST_UPDATED"
	KindRoomPlaylistUpdated  = "ROOM_PLAYLIST_UPDATED"
)

// Envelope wraps every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode marshals a payload into a framed envelope.
func Encode(kind string, payload any) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return json.Marshal(Envelope{Type: kind, Data: data})
}

// Inbound payloads. Optional numeric fields use pointers so malformed
// or absent values can be told apart from zero.

type UpdatePlayerAction struct {
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	TextureID *int     `json:"textureId"`
	AnimID    *int     `json:"animId"`
}

type UpdatePlayerName struct {
	Name string `json:"name"`
}

type UpdatePlayerScale struct {
	Scale *int `json:"scale"`
}

type AddChatMessage struct {
	Content string `json:"content"`
}

type PunchPlayer struct {
	TargetID string `json:"targetId"`
}

type BoothIndex struct {
	MusicBoothIndex *int `json:"musicBoothIndex"`
}

type QueuePlaylistAdd struct {
	Title    string  `json:"title"`
	Link     string  `json:"link"`
	Duration float64 `json:"duration"`
}

type QueuePlaylistRemove struct {
	ItemID string `json:"itemId"`
}

type QueuePlaylistReorder struct {
	FromIndex *int `json:"fromIndex"`
	ToIndex   *int `json:"toIndex"`
}

type RoomPlaylistAdd struct {
	Title    string  `json:"title"`
	Link     string  `json:"link"`
	Duration float64 `json:"duration"`
}

type RoomPlaylistRemove struct {
	ID string `json:"id"`
}

type TimeSyncRequest struct {
	ClientSentAtMs *int64 `json:"clientSentAtMs"`
}

// Outbound payloads.

type TimeSyncResponse struct {
	ClientSentAtMs int64 `json:"clientSentAtMs"`
	ServerNowMs    int64 `json:"serverNowMs"`
}

type RoomData struct {
	ID             domain.RoomID   `json:"id"`
	Name           domain.RoomName `json:"name"`
	Description    string          `json:"description"`
	BackgroundSeed *int            `json:"backgroundSeed"`
}

// RoomState is the full snapshot sent to a client on join; afterwards
// the server broadcasts per-command deltas.
type RoomState struct {
	Players            map[domain.SessionID]*domain.Player `json:"players"`
	MusicBooths        []*domain.MusicBooth                `json:"musicBooths"`
	DJQueue            []*domain.DJQueueEntry              `json:"djQueue"`
	CurrentDjSessionID domain.SessionID                    `json:"currentDjSessionId,omitempty"`
	RoomPlaylist       []*domain.RoomPlaylistItem          `json:"roomPlaylist"`
	ChatMessages       []domain.ChatMessage                `json:"chatMessages"`
	MusicStream        domain.MusicStream                  `json:"musicStream"`
}

type PlayerJoined struct {
	SessionID domain.SessionID `json:"sessionId"`
	Player    *domain.Player   `json:"player"`
}

type PlayerLeft struct {
	SessionID domain.SessionID `json:"sessionId"`
}

type PlayerActionBroadcast struct {
	SessionID domain.SessionID `json:"sessionId"`
	X         float64          `json:"x"`
	Y         float64          `json:"y"`
	TextureID uint8            `json:"textureId"`
	AnimID    uint8            `json:"animId"`
	Scale     uint8            `json:"scale,omitempty"`
}

type ChatBroadcast struct {
	ClientID domain.SessionID `json:"clientId"`
	Content  string           `json:"content"`
}

type PlayerJumpBroadcast struct {
	SessionID domain.SessionID `json:"sessionId"`
}

type StartMusicStream struct {
	MusicStream domain.MusicStream `json:"musicStream"`
	Offset      float64            `json:"offset"` // seconds already elapsed, per recipient
}

type MusicStreamTick struct {
	StreamID    int64 `json:"streamId"`
	StartTime   int64 `json:"startTime"`
	ServerNowMs int64 `json:"serverNowMs"`
}

type DJQueueUpdated struct {
	DJQueue            []*domain.DJQueueEntry `json:"djQueue"`
	CurrentDjSessionID domain.SessionID       `json:"currentDjSessionId,omitempty"`
}

type DJPlayStarted struct {
	DJSessionID domain.SessionID `json:"djSessionId"`
	TrackID     string           `json:"trackId"`
}

type QueuePlaylistUpdated struct {
	Items []*domain.QueueTrack `json:"items"`
}

type RoomPlaylistUpdated struct {
	Items []*domain.RoomPlaylistItem `json:"items"`
	Index int                        `json:"index"`
}

type PunchHit struct {
	Anim string  `json:"anim"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type MusicBoothsUpdated struct {
	MusicBooths []*domain.MusicBooth `json:"musicBooths"`
}
