package domain

// StreamStatus is the playback phase of the room's music stream.
type StreamStatus string

const (
	StreamWaiting StreamStatus = "waiting"
	StreamSeeking StreamStatus = "seeking"
	StreamPlaying StreamStatus = "playing"
)

// MusicStream is the single authoritative "what is playing" descriptor.
// The server is the sole writer; clients derive elapsed playback time
// from StartTime and their estimated clock offset.
//
// StreamID increases on every track change so clients can discard
// heartbeats and timers belonging to a previous track.
type MusicStream struct {
	Status                 StreamStatus `json:"status"`
	StreamID               int64        `json:"streamId"`
	CurrentLink            string       `json:"currentLink,omitempty"`
	CurrentTitle           string       `json:"currentTitle,omitempty"`
	CurrentVisualURL       string       `json:"currentVisualUrl,omitempty"`
	CurrentTrackMessage    string       `json:"currentTrackMessage,omitempty"`
	CurrentBooth           int          `json:"currentBooth"`
	CurrentDj              DJUserInfo   `json:"currentDj"`
	StartTime              int64        `json:"startTime"` // server epoch ms
	Duration               float64      `json:"duration"`  // seconds
	IsRoomPlaylist         bool         `json:"isRoomPlaylist"`
	RoomPlaylistIndex      int          `json:"roomPlaylistIndex"`
	VideoBackgroundEnabled bool         `json:"videoBackgroundEnabled"`
	IsAmbient              bool         `json:"isAmbient"`
}

// Stop resets the descriptor to the waiting state, keeping StreamID.
func (m *MusicStream) Stop(nowMs int64) {
	m.Status = StreamWaiting
	m.CurrentLink = ""
	m.CurrentTitle = ""
	m.CurrentVisualURL = ""
	m.CurrentTrackMessage = ""
	m.StartTime = nowMs
	m.Duration = 0
	m.IsAmbient = false
	m.IsRoomPlaylist = false
}
