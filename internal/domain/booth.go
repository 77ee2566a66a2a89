package domain

// BoothCapacity is the number of slots in a music booth.
const BoothCapacity = 4

// MusicBooth holds a fixed set of occupant slots. Empty slots hold "".
// Fixed-size slots keep a player's slot index stable while connected.
type MusicBooth struct {
	ConnectedUsers [BoothCapacity]SessionID `json:"connectedUsers"`
}

func (b *MusicBooth) OccupiedCount() int {
	n := 0
	for _, id := range b.ConnectedUsers {
		if id != "" {
			n++
		}
	}
	return n
}

func (b *MusicBooth) Contains(sid SessionID) bool {
	for _, id := range b.ConnectedUsers {
		if id == sid {
			return true
		}
	}
	return false
}

func (b *MusicBooth) IsEmpty() bool { return b.OccupiedCount() == 0 }

// Occupy places sid in the first empty slot. Reports false when the
// booth is full or sid already holds a slot.
func (b *MusicBooth) Occupy(sid SessionID) bool {
	if b.Contains(sid) {
		return false
	}
	for i, id := range b.ConnectedUsers {
		if id == "" {
			b.ConnectedUsers[i] = sid
			return true
		}
	}
	return false
}

// Vacate clears sid's slot, leaving other slot indices untouched.
func (b *MusicBooth) Vacate(sid SessionID) bool {
	for i, id := range b.ConnectedUsers {
		if id == sid {
			b.ConnectedUsers[i] = ""
			return true
		}
	}
	return false
}
