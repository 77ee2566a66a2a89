package domain

// Texture ids shared with clients. Texture 0 is the only set with
// eight-way directional animations and the special/hit ranges.
const (
	TextureMutant uint8 = 0
	TextureAdam   uint8 = 1
	TextureAsh    uint8 = 2
	TextureLucy   uint8 = 3
	TextureNancy  uint8 = 4

	textureCount = 5
)

// Direction ids, packed into the low 3 bits of a directional anim id.
const (
	DirDown uint8 = iota
	DirDownLeft
	DirLeft
	DirUpLeft
	DirUp
	DirUpRight
	DirRight
	DirDownRight
)

// Animation kinds, packed into bits 3..4 of a directional anim id.
const (
	AnimIdle uint8 = iota
	AnimRun
	AnimSit
)

// Special anim ids, valid only for TextureMutant.
const (
	AnimBoombox          uint8 = 24
	AnimDJWip            uint8 = 25
	AnimTransform        uint8 = 26
	AnimTransformReverse uint8 = 27
)

// Base offsets for 8-slot directional hit/punch/effect anim ranges,
// valid only for TextureMutant.
const (
	Hit1Base         uint8 = 32
	Hit2Base         uint8 = 40
	PunchBase        uint8 = 48
	BurnBase         uint8 = 56
	FlamethrowerBase uint8 = 64
)

// PackDirectionalAnimID encodes (kind<<3)|dir.
func PackDirectionalAnimID(kind, dir uint8) uint8 {
	return kind<<3 | dir&0b111
}

// SanitizeTextureID collapses unknown texture ids to TextureMutant.
func SanitizeTextureID(v int) uint8 {
	if v < 0 || v >= textureCount {
		return TextureMutant
	}
	return uint8(v)
}

// SanitizeAnimID rejects anim ids outside the ranges valid for the
// given texture, collapsing them to idle/down. Directional ids 0..23
// are valid for every texture; special and hit ranges only for
// TextureMutant.
func SanitizeAnimID(v int, textureID uint8) uint8 {
	idle := PackDirectionalAnimID(AnimIdle, DirDown)
	if v < 0 || v > 255 {
		return idle
	}
	aid := uint8(v)

	if aid < 24 {
		return aid
	}
	if textureID != TextureMutant {
		return idle
	}
	switch {
	case aid >= AnimBoombox && aid <= AnimTransformReverse:
		return aid
	case aid >= Hit1Base && aid < Hit1Base+8:
		return aid
	case aid >= Hit2Base && aid < Hit2Base+8:
		return aid
	case aid >= PunchBase && aid < PunchBase+8:
		return aid
	case aid >= BurnBase && aid < BurnBase+8:
		return aid
	case aid >= FlamethrowerBase && aid < FlamethrowerBase+8:
		return aid
	}
	return idle
}

// CollapseDir maps diagonal directions to up/down for textures that
// only ship four-way animations.
func CollapseDir(textureID, dir uint8) uint8 {
	if textureID == TextureMutant {
		return dir
	}
	switch dir {
	case DirUpLeft, DirUpRight:
		return DirUp
	case DirDownLeft, DirDownRight:
		return DirDown
	}
	return dir
}

var dirNames = [8]string{
	"down", "down_left", "left", "up_left", "up", "up_right", "right", "down_right",
}

// DirName returns the wire name for a direction id.
func DirName(dir uint8) string {
	if int(dir) >= len(dirNames) {
		return "down"
	}
	return dirNames[dir]
}
