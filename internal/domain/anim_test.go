package domain

import "testing"

func TestPackDirectionalAnimID(t *testing.T) {
	if got := PackDirectionalAnimID(AnimRun, DirLeft); got != 10 {
		t.Fatalf("run/left = %d, want 10", got)
	}
	if got := PackDirectionalAnimID(AnimIdle, DirDown); got != 0 {
		t.Fatalf("idle/down = %d, want 0", got)
	}
	if got := PackDirectionalAnimID(AnimSit, DirDownRight); got != 23 {
		t.Fatalf("sit/down_right = %d, want 23", got)
	}
}

func TestSanitizeTextureID(t *testing.T) {
	cases := map[int]uint8{
		-1:  TextureMutant,
		0:   TextureMutant,
		4:   TextureNancy,
		5:   TextureMutant,
		999: TextureMutant,
	}
	for in, want := range cases {
		if got := SanitizeTextureID(in); got != want {
			t.Errorf("SanitizeTextureID(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestSanitizeAnimID(t *testing.T) {
	idle := PackDirectionalAnimID(AnimIdle, DirDown)

	// Directional ids are valid for every texture.
	if got := SanitizeAnimID(17, TextureLucy); got != 17 {
		t.Fatalf("directional id rejected: %d", got)
	}

	// Special and hit ranges only exist on the mutant set.
	if got := SanitizeAnimID(int(AnimBoombox), TextureMutant); got != AnimBoombox {
		t.Fatalf("boombox rejected for mutant: %d", got)
	}
	if got := SanitizeAnimID(int(AnimBoombox), TextureAdam); got != idle {
		t.Fatalf("boombox allowed for adam: %d", got)
	}
	if got := SanitizeAnimID(int(Hit1Base+3), TextureMutant); got != Hit1Base+3 {
		t.Fatalf("hit anim rejected for mutant: %d", got)
	}
	if got := SanitizeAnimID(int(Hit2Base+7), TextureAsh); got != idle {
		t.Fatalf("hit anim allowed for ash: %d", got)
	}

	// Gaps and out-of-range values collapse to idle.
	for _, bad := range []int{-1, 28, 31, int(FlamethrowerBase) + 8, 300} {
		if got := SanitizeAnimID(bad, TextureMutant); got != idle {
			t.Errorf("SanitizeAnimID(%d) = %d, want idle", bad, got)
		}
	}
}

func TestCollapseDir(t *testing.T) {
	// The mutant set keeps all eight directions.
	if got := CollapseDir(TextureMutant, DirUpLeft); got != DirUpLeft {
		t.Fatalf("mutant up_left collapsed to %d", got)
	}

	// Four-way textures lose the diagonals.
	if got := CollapseDir(TextureAdam, DirUpRight); got != DirUp {
		t.Fatalf("adam up_right = %d, want up", got)
	}
	if got := CollapseDir(TextureNancy, DirDownLeft); got != DirDown {
		t.Fatalf("nancy down_left = %d, want down", got)
	}
	if got := CollapseDir(TextureAdam, DirLeft); got != DirLeft {
		t.Fatalf("adam left = %d, want left unchanged", got)
	}
}

func TestDirName(t *testing.T) {
	if DirName(DirDownLeft) != "down_left" {
		t.Fatal("down_left name mismatch")
	}
	if DirName(200) != "down" {
		t.Fatal("out-of-range dir should fall back to down")
	}
}
