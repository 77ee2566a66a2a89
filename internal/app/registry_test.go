package app

import (
	"testing"

	"github.com/clubroom/clubroom/internal/core"
)

type nopConn struct{ closed bool }

func (c *nopConn) TrySend(core.Frame) error { return nil }
func (c *nopConn) Close()                   { c.closed = true }

func TestRebindSurvivesStaleUnbind(t *testing.T) {
	m := newTestManager(t)
	room, err := m.Create(CreateRoomParams{Name: "basement"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reg := NewRegistry()
	old := &nopConn{}
	fresh := &nopConn{}

	reg.Bind("sid", room, old)
	reg.Bind("sid", room, fresh)
	if !old.closed {
		t.Fatal("replaced connection should be closed on rebind")
	}

	// The replaced connection's pump reports its unbind late.
	reg.Unbind("sid", old)
	if _, ok := reg.RoomOf("sid"); !ok {
		t.Fatal("stale unbind must not drop the fresh binding")
	}

	reg.Unbind("sid", fresh)
	if _, ok := reg.RoomOf("sid"); ok {
		t.Fatal("unbind from the live connection should drop the session")
	}
}
