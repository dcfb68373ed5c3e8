package handlers

import (
	"context"
	"testing"

	"github.com/civic-action/platform/internal/events"
	"go.uber.org/zap"
)

type recordingConn struct {
	messages [][]byte
}

func (c *recordingConn) WriteMessage(_ int, data []byte) error {
	c.messages = append(c.messages, data)
	return nil
}

type nopSubscriber struct{}

func (nopSubscriber) Subscribe(context.Context, string, func(events.Event)) error { return nil }

func TestWSHubRoutesByPetition(t *testing.T) {
	hub := NewWSHub(nopSubscriber{}, zap.NewNop())
	a, b := &recordingConn{}, &recordingConn{}
	hub.register("p1", a)
	hub.register("p2", b)

	hub.broadcast(events.PetitionSigned("p1", "Ada", "L", ""))
	hub.broadcast(events.Event{Type: events.EventDonationRecorded})

	if len(a.messages) != 1 {
		t.Errorf("p1 watcher got %d messages, want 1", len(a.messages))
	}
	if len(b.messages) != 0 {
		t.Errorf("p2 watcher got %d messages, want 0", len(b.messages))
	}

	hub.unregister("p1", a)
	if _, ok := hub.connections["p1"]; ok {
		t.Error("empty petition entry should be removed")
	}
	hub.broadcast(events.PetitionSigned("p1", "Ada", "L", ""))
	if len(a.messages) != 1 {
		t.Error("unregistered conn should not receive events")
	}
}
