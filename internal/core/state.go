package core

import (
	"github.com/clubroom/clubroom/internal/domain"
	"github.com/clubroom/clubroom/internal/protocol"
)

// State is the canonical replicated data model of one room. It is only
// ever touched from the room goroutine, so methods need no locking.
type State struct {
	Players      map[domain.SessionID]*domain.Player
	Booths       []*domain.MusicBooth
	DJQueue      []*domain.DJQueueEntry
	CurrentDJ    domain.SessionID // "" = nobody has the floor
	RoomPlaylist []*domain.RoomPlaylistItem
	Chat         []domain.ChatMessage
	Stream       domain.MusicStream

	chatLimit int
}

func newState(boothCount, chatLimit int) *State {
	s := &State{
		Players:   make(map[domain.SessionID]*domain.Player),
		Booths:    make([]*domain.MusicBooth, 0, boothCount),
		chatLimit: chatLimit,
	}
	for i := 0; i < boothCount; i++ {
		s.Booths = append(s.Booths, &domain.MusicBooth{})
	}
	s.Stream.Status = domain.StreamWaiting
	return s
}

// AppendChat keeps the log bounded: the oldest entry is evicted once
// the ring is full.
func (s *State) AppendChat(msg domain.ChatMessage) {
	if len(s.Chat) >= s.chatLimit {
		s.Chat = s.Chat[1:]
	}
	s.Chat = append(s.Chat, msg)
}

// renumberQueue restores the 0..N-1 queuePosition permutation after a
// structural change.
func (s *State) renumberQueue() {
	for i, e := range s.DJQueue {
		e.QueuePosition = i
	}
}

func (s *State) queueIndex(sid domain.SessionID) int {
	for i, e := range s.DJQueue {
		if e.SessionID == sid {
			return i
		}
	}
	return -1
}

// Snapshot builds the full replication view sent to a joining client.
func (s *State) Snapshot() protocol.RoomState {
	return protocol.RoomState{
		Players:            s.Players,
		MusicBooths:        s.Booths,
		DJQueue:            s.DJQueue,
		CurrentDjSessionID: s.CurrentDJ,
		RoomPlaylist:       s.RoomPlaylist,
		ChatMessages:       s.Chat,
		MusicStream:        s.Stream,
	}
}
