// Package domain contains entities without transport or lifecycle logic.
package domain

import "errors"

const (
	MaxNameLen    = 36
	MaxContentLen = 500

	SpawnX = 705
	SpawnY = 500

	DefaultScale = 100
)

var (
	ErrNameEmpty   = errors.New("name empty")
	ErrNameTooLong = errors.New("name too long")
)

// Player is the per-connection simulated entity. One per session id,
// created on join and destroyed on leave.
type Player struct {
	ID             string        `json:"id,omitempty"` // durable client token, client-supplied
	Name           string        `json:"name"`
	X              float64       `json:"x"`
	Y              float64       `json:"y"`
	TextureID      uint8         `json:"textureId"`
	AnimID         uint8         `json:"animId"`
	Scale          uint8         `json:"scale"`
	ReadyToConnect bool          `json:"readyToConnect"`
	Queue          []*QueueTrack `json:"roomQueuePlaylist"`
}

func NewPlayer() *Player {
	return &Player{
		X:         SpawnX,
		Y:         SpawnY,
		TextureID: TextureMutant,
		AnimID:    PackDirectionalAnimID(AnimIdle, DirDown),
		Scale:     DefaultScale,
	}
}

// HasUnplayed reports whether the queue holds a track that has not been
// played yet. Played tracks stay queued as history and do not count.
func (p *Player) HasUnplayed() bool {
	for _, t := range p.Queue {
		if !t.Played {
			return true
		}
	}
	return false
}

func (p *Player) SetName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	p.Name = name
	return nil
}
