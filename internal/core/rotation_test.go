package core

import (
	"testing"

	"github.com/clubroom/clubroom/internal/domain"
	"github.com/clubroom/clubroom/internal/protocol"
)

func assertQueueIntegrity(t *testing.T, r *Room) {
	t.Helper()
	seen := make(map[domain.SessionID]bool)
	for i, e := range r.state.DJQueue {
		if e.QueuePosition != i {
			t.Fatalf("queuePosition[%d] = %d", i, e.QueuePosition)
		}
		if seen[e.SessionID] {
			t.Fatalf("duplicate queue entry for %s", e.SessionID)
		}
		seen[e.SessionID] = true
	}
}

func queueOrder(r *Room) []domain.SessionID {
	out := make([]domain.SessionID, 0, len(r.state.DJQueue))
	for _, e := range r.state.DJQueue {
		out = append(out, e.SessionID)
	}
	return out
}

func TestDJQueueJoinIdempotent(t *testing.T) {
	r, _ := newTestRoom(t, false)
	join(t, r, "a")

	r.handleDJQueueJoin("a", nil)
	r.handleDJQueueJoin("a", nil)

	if len(r.state.DJQueue) != 1 {
		t.Fatalf("queue length = %d, want 1", len(r.state.DJQueue))
	}
	assertQueueIntegrity(t, r)
}

func TestFirstEntrantTakesFloorWithoutTracks(t *testing.T) {
	r, _ := newTestRoom(t, false)
	join(t, r, "a")

	r.handleDJQueueJoin("a", nil)

	if r.state.CurrentDJ != "a" {
		t.Fatal("first entrant should hold the floor")
	}
	if r.state.Stream.Status != domain.StreamWaiting {
		t.Fatal("no tracks, nothing should play")
	}
}

func TestLateEntrantWithTracksClaimsIdleFloor(t *testing.T) {
	r, _ := newTestRoom(t, false)
	join(t, r, "a")
	join(t, r, "b")
	join(t, r, "c")

	// a holds the floor tracklessly, c waits tracklessly, a leaves:
	// the queue is non-empty but nobody can play.
	r.handleDJQueueJoin("a", nil)
	r.handleDJQueueJoin("c", nil)
	r.handleDJQueueLeave("a", nil)

	if r.state.CurrentDJ != "" {
		t.Fatalf("current = %s, want nobody", r.state.CurrentDJ)
	}

	addTrack(t, r, "b", "t1", 30)
	r.handleDJQueueJoin("b", nil)

	if r.state.CurrentDJ != "b" {
		t.Fatalf("current = %s, want b", r.state.CurrentDJ)
	}
	if r.state.Stream.Status != domain.StreamPlaying {
		t.Fatal("b's track should start immediately")
	}
	assertQueueIntegrity(t, r)
}

func TestRotationFairness(t *testing.T) {
	r, _ := newTestRoom(t, false)
	join(t, r, "a")
	join(t, r, "b")
	join(t, r, "c")

	addTrack(t, r, "a", "a2", 30)
	addTrack(t, r, "a", "a1", 30)
	addTrack(t, r, "b", "b1", 30)

	r.handleDJQueueJoin("a", nil) // auto-plays a's head track
	r.handleDJQueueJoin("b", nil)
	r.handleDJQueueJoin("c", nil)

	if r.state.CurrentDJ != "a" {
		t.Fatalf("current = %s, want a", r.state.CurrentDJ)
	}

	r.handleDJTurnComplete("a", nil)

	// a still has content, so it re-enters at the tail; b is next with
	// tracks and takes the floor. c never gets the floor while empty.
	if r.state.CurrentDJ != "b" {
		t.Fatalf("current = %s, want b", r.state.CurrentDJ)
	}
	order := queueOrder(r)
	if order[0] != "b" || order[len(order)-1] != "a" {
		t.Fatalf("order = %v, want b first, a last", order)
	}
	assertQueueIntegrity(t, r)

	r.handleDJTurnComplete("b", nil)

	if r.state.CurrentDJ != "a" {
		t.Fatalf("current = %s, want a", r.state.CurrentDJ)
	}
	assertQueueIntegrity(t, r)
}

func TestSkipTurnOnlyForCurrentDJ(t *testing.T) {
	r, _ := newTestRoom(t, false)
	join(t, r, "a")
	join(t, r, "b")

	addTrack(t, r, "a", "a1", 30)
	r.handleDJQueueJoin("a", nil)
	r.handleDJQueueJoin("b", nil)

	streamID := r.state.Stream.StreamID
	r.handleDJSkipTurn("b", nil)

	if r.state.Stream.StreamID != streamID || r.state.CurrentDJ != "a" {
		t.Fatal("non-current DJ must not be able to skip")
	}
}

func TestLiveDJLeaveStopsThenPromotes(t *testing.T) {
	r, _ := newTestRoom(t, false)
	conn := join(t, r, "a")
	join(t, r, "b")

	addTrack(t, r, "a", "a1", 30)
	addTrack(t, r, "b", "b1", 30)
	r.handleDJQueueJoin("a", nil)
	r.handleDJQueueJoin("b", nil)

	r.handleDJQueueLeave("a", nil)

	if r.state.queueIndex("a") >= 0 {
		t.Fatal("a should be out of the rotation")
	}
	if r.state.CurrentDJ != "b" {
		t.Fatalf("current = %s, want b", r.state.CurrentDJ)
	}
	if r.state.Stream.Status != domain.StreamPlaying || r.state.Stream.CurrentDj.SessionID != "b" {
		t.Fatal("b's track should be live")
	}
	if conn.countKind(protocol.KindStopMusicStream) == 0 {
		t.Fatal("a's stream must stop before b's starts")
	}
	assertQueueIntegrity(t, r)
}

func TestLeaveWithNoPlayableSuccessorClearsFloor(t *testing.T) {
	r, _ := newTestRoom(t, false)
	join(t, r, "a")
	join(t, r, "c")

	addTrack(t, r, "a", "a1", 30)
	r.handleDJQueueJoin("a", nil)
	r.handleDJQueueJoin("c", nil) // c has no tracks

	r.handleDJQueueLeave("a", nil)

	if r.state.CurrentDJ != "" {
		t.Fatalf("current = %s, want nobody", r.state.CurrentDJ)
	}
	if r.state.Stream.Status != domain.StreamWaiting {
		t.Fatal("stream should stop with no playable successor")
	}
	assertQueueIntegrity(t, r)
}

func TestDJPlayAndStopGated(t *testing.T) {
	r, _ := newTestRoom(t, false)
	join(t, r, "a")

	r.handleDJQueueJoin("a", nil)
	r.handleDJPlay("a", nil) // no tracks: no-op
	if r.state.Stream.Status != domain.StreamWaiting {
		t.Fatal("play without tracks should be a no-op")
	}

	addTrack(t, r, "a", "a1", 30)
	r.handleDJPlay("a", nil)
	if r.state.Stream.Status != domain.StreamPlaying {
		t.Fatal("explicit play should start the head track")
	}

	r.handleDJStop("b", nil) // not current
	if r.state.Stream.Status != domain.StreamPlaying {
		t.Fatal("stop from a non-current session must be ignored")
	}

	r.handleDJStop("a", nil)
	if r.state.Stream.Status != domain.StreamWaiting {
		t.Fatal("current DJ stop should halt the stream")
	}
}

func TestSoleDJStopsAfterOnlyTrackPlays(t *testing.T) {
	r, _ := newTestRoom(t, false)
	conn := join(t, r, "p1")

	addTrack(t, r, "p1", "only", 30)
	r.handleDJQueueJoin("p1", nil)
	r.handleDJTurnComplete("p1", nil)

	if r.state.Stream.Status != domain.StreamWaiting {
		t.Fatalf("status = %s, want waiting after the last unplayed track", r.state.Stream.Status)
	}
	if r.state.CurrentDJ != "" {
		t.Fatalf("current = %s, want nobody", r.state.CurrentDJ)
	}
	if conn.countKind(protocol.KindStopMusicStream) == 0 {
		t.Fatal("stop should be announced")
	}
	if conn.countKind(protocol.KindStartMusicStream) != 1 {
		t.Fatalf("starts = %d, want exactly one (no replay of played history)", conn.countKind(protocol.KindStartMusicStream))
	}

	q := r.state.Players["p1"].Queue
	if len(q) != 1 || !q[0].Played {
		t.Fatal("played history should survive at the queue tail")
	}
	if r.state.queueIndex("p1") != 0 {
		t.Fatal("p1 keeps its rotation slot while waiting for content")
	}
}

func TestAddingTrackRevivesWaitingRotation(t *testing.T) {
	r, _ := newTestRoom(t, false)
	join(t, r, "p1")

	addTrack(t, r, "p1", "only", 30)
	r.handleDJQueueJoin("p1", nil)
	r.handleDJTurnComplete("p1", nil)

	addTrack(t, r, "p1", "encore", 30)

	if r.state.CurrentDJ != "p1" {
		t.Fatalf("current = %s, want p1 back on the floor", r.state.CurrentDJ)
	}
	if r.state.Stream.Status != domain.StreamPlaying || r.state.Stream.CurrentTitle != "encore" {
		t.Fatalf("stream = %s %q, want the fresh track playing", r.state.Stream.Status, r.state.Stream.CurrentTitle)
	}
	assertQueueIntegrity(t, r)
}
