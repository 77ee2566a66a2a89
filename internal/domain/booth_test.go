package domain

import "testing"

func TestBoothOccupyVacate(t *testing.T) {
	b := &MusicBooth{}

	if !b.Occupy("a") {
		t.Fatal("first occupy failed")
	}
	if b.Occupy("a") {
		t.Fatal("double occupy should fail")
	}
	for _, sid := range []SessionID{"b", "c", "d"} {
		if !b.Occupy(sid) {
			t.Fatalf("occupy %s failed", sid)
		}
	}
	if b.Occupy("e") {
		t.Fatal("occupy beyond capacity should fail")
	}
	if b.OccupiedCount() != BoothCapacity {
		t.Fatalf("occupied = %d", b.OccupiedCount())
	}

	if !b.Vacate("b") {
		t.Fatal("vacate failed")
	}
	if b.Vacate("b") {
		t.Fatal("double vacate should fail")
	}
	if b.Contains("b") {
		t.Fatal("b still present")
	}
	// Slots are positional: the others must not move.
	if !b.Contains("a") || !b.Contains("c") || !b.Contains("d") {
		t.Fatal("vacate disturbed other slots")
	}
	if b.IsEmpty() {
		t.Fatal("booth with occupants reported empty")
	}
}
