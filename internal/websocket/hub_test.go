package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javi/team-balancer-web/internal/balancer"
)

func TestHubBroadcastsEngineEvents(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := NewClient(hub, nil, uuid.New())
	hub.Register(client)

	hub.Publish(balancer.Event{Type: balancer.EventGenerationStarted})

	select {
	case data := <-client.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, MessageTypeProgress, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("no frame delivered to registered client")
	}
}

func TestHubRegisterAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	hub.Stop()

	client := NewClient(hub, nil, uuid.New())

	registered := make(chan struct{})
	go func() {
		hub.Register(client)
		close(registered)
	}()

	select {
	case <-registered:
	case <-time.After(time.Second):
		t.Fatal("Register blocked on a stopped hub")
	}

	// The client must have been shut down, not silently parked.
	_, open := <-client.send
	assert.False(t, open)
}

func TestHubUnregisterAfterStop(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil, uuid.New())
	hub.Register(client)
	hub.Stop()

	done := make(chan struct{})
	go func() {
		hub.Unregister(client)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked on a stopped hub")
	}
}
