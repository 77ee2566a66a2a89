package core

import (
	"testing"
	"time"
)

func TestMovementRejectsTeleport(t *testing.T) {
	v := NewMovementValidator(240, 40, 50*time.Millisecond)
	now := time.Now()
	v.Touch("p1", now)

	// 10,000 px claimed in 50 ms.
	now = now.Add(50 * time.Millisecond)
	if v.Allow("p1", 0, 0, 10000, 0, now) {
		t.Fatal("teleport accepted")
	}

	// A rejected update must not consume the rate-limit slot.
	if !v.Allow("p1", 0, 0, 10, 0, now) {
		t.Fatal("plausible move after rejected teleport should pass")
	}
}

func TestMovementRateLimit(t *testing.T) {
	v := NewMovementValidator(240, 40, 50*time.Millisecond)
	now := time.Now()
	v.Touch("p1", now)

	now = now.Add(60 * time.Millisecond)
	if !v.Allow("p1", 0, 0, 5, 0, now) {
		t.Fatal("first update should pass")
	}

	now = now.Add(10 * time.Millisecond)
	if v.Allow("p1", 5, 0, 6, 0, now) {
		t.Fatal("update within min interval should be rejected")
	}

	now = now.Add(50 * time.Millisecond)
	if !v.Allow("p1", 5, 0, 6, 0, now) {
		t.Fatal("update after min interval should pass")
	}
}

func TestMovementSlackAllowsJitter(t *testing.T) {
	v := NewMovementValidator(240, 40, 50*time.Millisecond)
	now := time.Now()
	v.Touch("p1", now)

	// 240 px/s over 100ms is 24px; slack covers another 40.
	now = now.Add(100 * time.Millisecond)
	if !v.Allow("p1", 0, 0, 60, 0, now) {
		t.Fatal("move within speed+slack should pass")
	}

	now = now.Add(100 * time.Millisecond)
	if v.Allow("p1", 60, 0, 130, 0, now) {
		t.Fatal("move beyond speed+slack should fail")
	}
}

func TestMovementForget(t *testing.T) {
	v := NewMovementValidator(240, 40, 50*time.Millisecond)
	now := time.Now()
	v.Touch("p1", now)
	v.Forget("p1")

	// Unseen player: rate limit does not apply, distance measured
	// against the minimum interval.
	if !v.Allow("p1", 0, 0, 10, 0, now) {
		t.Fatal("forgotten player should be treated as fresh")
	}
}
