package domain

// DJQueueEntry tracks one player's place in the rotation.
// QueuePosition mirrors the entry's index and is renumbered after
// every structural change; position 0 is the current DJ.
type DJQueueEntry struct {
	SessionID     SessionID `json:"sessionId"`
	Name          string    `json:"name"`
	JoinedAtMs    int64     `json:"joinedAtMs"`
	QueuePosition int       `json:"queuePosition"`
}

// DJUserInfo is a snapshot of the DJ a stream belongs to.
type DJUserInfo struct {
	Name      string    `json:"name"`
	SessionID SessionID `json:"sessionId"`
}
