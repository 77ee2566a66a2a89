package core

import "time"

// Config tunes one room instance.
type Config struct {
	HeartbeatInterval    time.Duration
	AmbientCheckInterval time.Duration
	AmbientVideoID       string
	ChatHistoryLimit     int

	MoveMaxSpeedPxPerSec float64
	MoveSlackPx          float64
	MoveMinInterval      time.Duration

	PunchRangePx          float64
	PunchCooldown         time.Duration
	PunchImpactDelay      time.Duration
	PunchKnockbackDelay   time.Duration
	PunchKnockbackPx      float64
	WatchdogMinTrack      time.Duration
	WatchdogBuffer        time.Duration
	InboxSize             int
	BackpressureKickAfter int
}

func DefaultConfig() Config {
	return Config{
		HeartbeatInterval:    5 * time.Second,
		AmbientCheckInterval: 15 * time.Second,
		AmbientVideoID:       "5-gDL5G-VQQ",
		ChatHistoryLimit:     100,

		MoveMaxSpeedPxPerSec: 240,
		MoveSlackPx:          40,
		MoveMinInterval:      50 * time.Millisecond,

		PunchRangePx:          65,
		PunchCooldown:         600 * time.Millisecond,
		PunchImpactDelay:      370 * time.Millisecond,
		PunchKnockbackDelay:   150 * time.Millisecond,
		PunchKnockbackPx:      6,
		WatchdogMinTrack:      5 * time.Second,
		WatchdogBuffer:        10 * time.Second,
		InboxSize:             256,
		BackpressureKickAfter: 8,
	}
}
