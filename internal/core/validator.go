package core

import (
	"math"
	"time"

	"github.com/clubroom/clubroom/internal/domain"
)

// MovementValidator rejects implausible position jumps and excessive
// per-player update rates. A false positive only means the client does
// not teleport; an impossible move is never accepted.
type MovementValidator struct {
	maxSpeed    float64 // px per second
	slack       float64 // px
	minInterval time.Duration

	lastAcceptedAt map[domain.SessionID]time.Time
}

func NewMovementValidator(maxSpeed, slack float64, minInterval time.Duration) *MovementValidator {
	return &MovementValidator{
		maxSpeed:       maxSpeed,
		slack:          slack,
		minInterval:    minInterval,
		lastAcceptedAt: make(map[domain.SessionID]time.Time),
	}
}

// Touch seeds the rate limiter for a freshly joined player so their
// first update is measured against join time.
func (v *MovementValidator) Touch(sid domain.SessionID, now time.Time) {
	v.lastAcceptedAt[sid] = now
}

func (v *MovementValidator) Forget(sid domain.SessionID) {
	delete(v.lastAcceptedAt, sid)
}

// Allow validates a claimed move from (fromX,fromY) to (toX,toY). It
// records now as the last accepted timestamp only when the update
// passes both the rate limit and the distance bound.
func (v *MovementValidator) Allow(sid domain.SessionID, fromX, fromY, toX, toY float64, now time.Time) bool {
	last, seen := v.lastAcceptedAt[sid]
	if seen && now.Sub(last) < v.minInterval {
		return false
	}

	elapsed := v.minInterval
	if seen {
		elapsed = now.Sub(last)
	}
	maxAllowed := v.maxSpeed*elapsed.Seconds() + v.slack

	if math.Hypot(toX-fromX, toY-fromY) > maxAllowed {
		return false
	}

	v.lastAcceptedAt[sid] = now
	return true
}
