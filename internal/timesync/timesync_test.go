package timesync

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestEstimatorResistsOutliers(t *testing.T) {
	e := NewEstimator(clockwork.NewFakeClock())

	// Consistent low-RTT samples all implying offset 1000ms.
	base := int64(1_000_000)
	for i := int64(0); i < 6; i++ {
		sent := base + i*1000
		received := sent + 40 // rtt 40ms
		server := received + 1000 - 20
		e.AddSample(sent, server, received)
	}

	// One congested round trip implying a wildly different offset.
	sent := base + 10_000
	received := sent + 900 // rtt 900ms
	server := received + 5000 - 450
	e.AddSample(sent, server, received)

	if got := e.OffsetMs(); got != 1000 {
		t.Fatalf("offset = %d, want 1000 (outlier must not skew the median)", got)
	}
}

func TestEstimatorDropsNegativeRTT(t *testing.T) {
	e := NewEstimator(clockwork.NewFakeClock())
	e.AddSample(2000, 5000, 1000)
	if e.Ready() {
		t.Fatal("negative RTT sample must be discarded")
	}
}

func TestEstimatorKeepsOnlyBestSamples(t *testing.T) {
	e := NewEstimator(clockwork.NewFakeClock())

	// Fill beyond the cap with increasing RTTs.
	for i := int64(0); i < 15; i++ {
		sent := int64(1000) * i
		received := sent + 20 + i*10
		e.AddSample(sent, received+500, received)
	}
	e.mu.Lock()
	n := len(e.samples)
	worst := e.samples[n-1].rttMs
	e.mu.Unlock()

	if n != maxSamples {
		t.Fatalf("samples = %d, want %d", n, maxSamples)
	}
	if worst > 20+int64(maxSamples-1)*10 {
		t.Fatalf("worst retained rtt = %d, high-RTT samples not evicted", worst)
	}
}

func TestOnReadyFiresOnce(t *testing.T) {
	e := NewEstimator(clockwork.NewFakeClock())

	fired := 0
	e.OnReady(func() { fired++ })

	e.AddSample(0, 520, 40)
	e.AddSample(1000, 1520, 1040)

	if fired != 1 {
		t.Fatalf("fired = %d, want exactly once", fired)
	}

	// Late registration on a ready estimator fires immediately.
	e.OnReady(func() { fired++ })
	if fired != 2 {
		t.Fatalf("fired = %d, want immediate callback", fired)
	}
}

func TestConversions(t *testing.T) {
	clock := clockwork.NewFakeClock()
	e := NewEstimator(clock)
	e.AddSample(0, 1020, 40) // offset = 1020 + 20 - 40 = 1000

	if e.ToServerTime(500) != 1500 {
		t.Fatalf("toServerTime = %d", e.ToServerTime(500))
	}
	if e.ToClientTime(1500) != 500 {
		t.Fatalf("toClientTime = %d", e.ToClientTime(1500))
	}
	if e.ServerNowMs() != clock.Now().UnixMilli()+1000 {
		t.Fatal("serverNow must apply the offset to the local clock")
	}
}

func TestProberBurstSchedule(t *testing.T) {
	clock := clockwork.NewFakeClock()

	probes := make(chan int64, 64)
	p := NewProber(clock, func(sentAt int64) { probes <- sentAt })
	p.Start()
	defer p.Stop()

	// First probe of the initial burst fires immediately.
	waitProbe(t, probes)

	// The remaining four arrive at 200ms spacing.
	for i := 0; i < ProbeCount-1; i++ {
		clock.BlockUntil(1)
		clock.Advance(ProbeInterval)
		waitProbe(t, probes)
	}

	// Next burst only after the periodic interval.
	clock.BlockUntil(1)
	clock.Advance(PeriodicInterval)
	waitProbe(t, probes)
}

func waitProbe(t *testing.T, ch chan int64) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("probe not sent")
	}
}
