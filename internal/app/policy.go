package app

import (
	"github.com/clubroom/clubroom/internal/core"
	"github.com/clubroom/clubroom/internal/domain"
)

// SlowConsumerPolicy drops frames for a lagging client until the
// consecutive-drop count crosses the kick threshold.
type SlowConsumerPolicy struct {
	KickAfter int
}

func (p SlowConsumerPolicy) OnBackpressure(_ domain.SessionID, consecutiveDrops int) core.BackpressureAction {
	if p.KickAfter > 0 && consecutiveDrops >= p.KickAfter {
		return core.KickMember
	}
	return core.DropFrame
}
