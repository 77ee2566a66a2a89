package domain

// QueueTrack is one entry in a player's personal DJ queue.
// Played tracks are kept and rotated to the tail so history survives.
type QueueTrack struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Link      string  `json:"link"`
	Duration  float64 `json:"duration"` // seconds
	AddedAtMs int64   `json:"addedAtMs"`
	Played    bool    `json:"played"`
}

// RoomPlaylistItem is one entry in the shared room playlist,
// attributed to the session that added it.
type RoomPlaylistItem struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Link             string    `json:"link"`
	Duration         float64   `json:"duration"`
	AddedAtMs        int64     `json:"addedAtMs"`
	AddedBySessionID SessionID `json:"addedBySessionId"`
}
