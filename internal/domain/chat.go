package domain

// ChatMessage entries are append-only, never mutated in place.
type ChatMessage struct {
	Author    string `json:"author"`
	CreatedAt int64  `json:"createdAt"`
	Content   string `json:"content"`
}
