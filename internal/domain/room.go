package domain

type (
	RoomName  string
	RoomID    string
	SessionID string
)

// Room holds session-level metadata. Live state lives in core.
type Room struct {
	ID             RoomID
	Name           RoomName
	Description    string
	PasswordHash   []byte
	IsPublic       bool
	AutoDispose    bool
	BackgroundSeed int
}

// HasPassword reports whether joining this room requires a password.
func (r *Room) HasPassword() bool { return len(r.PasswordHash) > 0 }

// RoomInfo is the listing view of a room, safe to hand to any client.
type RoomInfo struct {
	ID          RoomID   `json:"id"`
	Name        RoomName `json:"name"`
	Description string   `json:"description"`
	IsPublic    bool     `json:"isPublic"`
	HasPassword bool     `json:"hasPassword"`
	PlayerCount int      `json:"playerCount"`
}
