package core

import (
	"math"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/clubroom/clubroom/internal/domain"
	"github.com/clubroom/clubroom/internal/protocol"
)

// Punch combat is a cosmetic two-stage sequence: the hit animation
// lands after the impact delay, the knockback after a further delay.
// Both stages run as posted events keyed by session id, never by
// captured player pointers, and re-check that the participants still
// exist when they fire.

func (r *Room) handlePunchPlayer(sid domain.SessionID, data []byte) {
	p, ok := decode[protocol.PunchPlayer](data)
	if !ok || p.TargetID == "" {
		return
	}
	targetID := domain.SessionID(p.TargetID)
	if targetID == sid {
		return
	}

	attacker, ok := r.state.Players[sid]
	if !ok {
		return
	}
	victim, ok := r.state.Players[targetID]
	if !ok {
		return
	}

	now := r.nowMs()
	if last, seen := r.lastPunchAtMs[sid]; seen && now-last < r.cfg.PunchCooldown.Milliseconds() {
		return
	}

	dx := attacker.X - victim.X
	dy := attacker.Y - victim.Y
	if dx*dx+dy*dy > r.cfg.PunchRangePx*r.cfg.PunchRangePx {
		return
	}

	// Only the mutant texture ships hit animations.
	if victim.TextureID != domain.TextureMutant {
		return
	}

	r.lastPunchAtMs[sid] = now
	r.punchSeq++
	seq := r.punchSeq

	dir := punchDir(dx, dy)
	hitBase := domain.Hit1Base
	hitName := "hit1"
	if rand.Intn(2) == 1 {
		hitBase = domain.Hit2Base
		hitName = "hit2"
	}
	hitAnimID := hitBase + dir
	hitAnimKey := "mutant_" + hitName + "_" + domain.DirName(dir)

	// Attacker position is captured now; the knockback pushes the victim
	// away from where the punch was thrown, not from wherever the
	// attacker wanders to.
	atkX, atkY := attacker.X, attacker.Y

	log.Debug().Str("module", "core.punch").Uint64("seq", seq).
		Str("attacker", string(sid)).Str("victim", string(targetID)).Msg("punch landed")

	r.clock.AfterFunc(r.cfg.PunchImpactDelay, func() {
		r.post(func(r *Room) { r.punchImpact(targetID, hitAnimID, hitAnimKey, atkX, atkY) })
	})
}

func (r *Room) punchImpact(targetID domain.SessionID, hitAnimID uint8, hitAnimKey string, atkX, atkY float64) {
	victim, ok := r.state.Players[targetID]
	if !ok {
		return
	}

	victim.TextureID = domain.TextureMutant
	victim.AnimID = hitAnimID

	r.broadcastExcept(targetID, protocol.KindUpdatePlayerAction, protocol.PlayerActionBroadcast{
		SessionID: targetID,
		X:         victim.X,
		Y:         victim.Y,
		TextureID: victim.TextureID,
		AnimID:    victim.AnimID,
	})
	r.sendTo(targetID, protocol.KindPunchPlayer, protocol.PunchHit{
		Anim: hitAnimKey,
		X:    victim.X,
		Y:    victim.Y,
	})

	r.clock.AfterFunc(r.cfg.PunchKnockbackDelay, func() {
		r.post(func(r *Room) { r.punchKnockback(targetID, atkX, atkY) })
	})
}

func (r *Room) punchKnockback(targetID domain.SessionID, atkX, atkY float64) {
	victim, ok := r.state.Players[targetID]
	if !ok {
		return
	}

	kbDx := victim.X - atkX
	kbDy := victim.Y - atkY
	if kbLen := math.Hypot(kbDx, kbDy); kbLen > 0 {
		victim.X += kbDx / kbLen * r.cfg.PunchKnockbackPx
		victim.Y += kbDy / kbLen * r.cfg.PunchKnockbackPx
	}
}

// punchDir picks the victim's facing direction from the attacker's
// offset. A roughly diagonal offset snaps to a corner direction, an
// axis-dominant one to the nearer cardinal.
func punchDir(dx, dy float64) uint8 {
	absDx, absDy := math.Abs(dx), math.Abs(dy)

	const diagonalThreshold = 0.5
	isDiagonal := absDx > 0 && absDy > 0 &&
		absDx/absDy > diagonalThreshold && absDy/absDx > diagonalThreshold

	switch {
	case isDiagonal && dy > 0 && dx >= 0:
		return domain.DirDownRight
	case isDiagonal && dy > 0:
		return domain.DirDownLeft
	case isDiagonal && dx >= 0:
		return domain.DirUpRight
	case isDiagonal:
		return domain.DirUpLeft
	case absDx >= absDy && dx >= 0:
		return domain.DirRight
	case absDx >= absDy:
		return domain.DirLeft
	case dy >= 0:
		return domain.DirDown
	default:
		return domain.DirUp
	}
}
