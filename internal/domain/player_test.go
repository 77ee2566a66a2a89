package domain

import (
	"strings"
	"testing"
)

func TestSetName(t *testing.T) {
	p := NewPlayer()

	if err := p.SetName(""); err != ErrNameEmpty {
		t.Fatalf("empty name: %v", err)
	}
	if err := p.SetName(strings.Repeat("x", MaxNameLen+1)); err != ErrNameTooLong {
		t.Fatalf("long name: %v", err)
	}
	if err := p.SetName("dj-mutant"); err != nil {
		t.Fatalf("valid name: %v", err)
	}
	if p.Name != "dj-mutant" {
		t.Fatalf("name = %q", p.Name)
	}
}

func TestNewPlayerDefaults(t *testing.T) {
	p := NewPlayer()
	if p.X != SpawnX || p.Y != SpawnY {
		t.Fatalf("spawn = (%v,%v)", p.X, p.Y)
	}
	if p.Scale != DefaultScale {
		t.Fatalf("scale = %d", p.Scale)
	}
	if p.TextureID != TextureMutant {
		t.Fatalf("texture = %d", p.TextureID)
	}
}
