// Package timesync estimates the clock offset between a client and the
// room server from TIME_SYNC_REQUEST / TIME_SYNC_RESPONSE round trips.
// The protocol is defined by the server; this estimator ships as a
// library so Go clients and tests share one implementation.
//
// offset = serverNow - clientNow (positive means the server is ahead).
package timesync

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	ProbeCount       = 5
	ProbeInterval    = 200 * time.Millisecond
	PeriodicInterval = 30 * time.Second

	maxSamples = 10
)

type sample struct {
	offsetMs int64
	rttMs    int64
}

// Estimator keeps the lowest-RTT samples and reports the median offset
// among them, so one congested round trip cannot skew the estimate.
type Estimator struct {
	clock clockwork.Clock

	mu       sync.Mutex
	samples  []sample
	offsetMs int64
	rttMs    int64
	ready    bool
	onReady  []func()
}

func NewEstimator(clock clockwork.Clock) *Estimator {
	return &Estimator{clock: clock}
}

// AddSample feeds one completed round trip into the estimator.
// clientSentAt and clientReceivedAt are local clock readings around the
// probe; serverNowMs is the server's reading when it replied. Samples
// with a negative RTT are discarded.
func (e *Estimator) AddSample(clientSentAtMs, serverNowMs, clientReceivedAtMs int64) {
	rtt := clientReceivedAtMs - clientSentAtMs
	if rtt < 0 {
		return
	}
	offset := serverNowMs + rtt/2 - clientReceivedAtMs

	e.mu.Lock()
	e.samples = append(e.samples, sample{offsetMs: offset, rttMs: rtt})
	sort.Slice(e.samples, func(i, j int) bool { return e.samples[i].rttMs < e.samples[j].rttMs })
	if len(e.samples) > maxSamples {
		e.samples = e.samples[:maxSamples]
	}

	mid := len(e.samples) / 2
	e.offsetMs = e.samples[mid].offsetMs
	e.rttMs = e.samples[mid].rttMs

	wasReady := e.ready
	e.ready = true
	var cbs []func()
	if !wasReady {
		cbs = e.onReady
		e.onReady = nil
	}
	e.mu.Unlock()

	for _, cb := range cbs {
		cb()
	}
}

// OffsetMs returns the current estimate.
func (e *Estimator) OffsetMs() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.offsetMs
}

// RttMs returns the RTT of the sample backing the current estimate.
func (e *Estimator) RttMs() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rttMs
}

// Ready reports whether at least one sample has been accepted.
func (e *Estimator) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// OnReady registers cb to run once, as soon as the first sample lands.
// Fires immediately when already ready.
func (e *Estimator) OnReady(cb func()) {
	e.mu.Lock()
	if e.ready {
		e.mu.Unlock()
		cb()
		return
	}
	e.onReady = append(e.onReady, cb)
	e.mu.Unlock()
}

// ServerNowMs is the estimated current server time.
func (e *Estimator) ServerNowMs() int64 {
	return e.clock.Now().UnixMilli() + e.OffsetMs()
}

// ToServerTime converts a local timestamp to server time.
func (e *Estimator) ToServerTime(clientMs int64) int64 { return clientMs + e.OffsetMs() }

// ToClientTime converts a server timestamp to local time.
func (e *Estimator) ToClientTime(serverMs int64) int64 { return serverMs - e.OffsetMs() }

// Prober drives the probe schedule: a burst of ProbeCount probes spaced
// ProbeInterval apart, repeated every PeriodicInterval. send must hand
// the current local time to the transport as a TIME_SYNC_REQUEST.
type Prober struct {
	clock clockwork.Clock
	send  func(clientSentAtMs int64)

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

func NewProber(clock clockwork.Clock, send func(clientSentAtMs int64)) *Prober {
	return &Prober{clock: clock, send: send, done: make(chan struct{})}
}

// Start launches the probe loop. One initial burst runs immediately.
func (p *Prober) Start() {
	go p.run()
}

func (p *Prober) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	close(p.done)
}

func (p *Prober) run() {
	p.burst()

	ticker := p.clock.NewTicker(PeriodicInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.done:
			return
		case <-ticker.Chan():
			p.burst()
		}
	}
}

func (p *Prober) burst() {
	for i := 0; i < ProbeCount; i++ {
		if i > 0 {
			select {
			case <-p.done:
				return
			case <-p.clock.After(ProbeInterval):
			}
		}
		p.send(p.clock.Now().UnixMilli())
	}
}
