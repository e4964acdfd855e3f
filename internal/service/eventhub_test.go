package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/event"
)

func TestEventHub(t *testing.T) {
	hub := NewEventHub(1)
	a, cancelA := hub.Subscribe()
	b, cancelB := hub.Subscribe()
	assert.Equal(t, 2, hub.Clients())

	e := &event.Envelope{Reference: "r1", Name: event.UserCreated}
	hub.Broadcast("user_created", e)
	// buffer full: dropped, not blocked
	hub.Broadcast("user_created", &event.Envelope{Reference: "r2"})

	got := <-a
	assert.Equal(t, "user_created", got.Channel)
	assert.Equal(t, "r1", got.Event.Reference)
	assert.Equal(t, "r1", (<-b).Event.Reference)

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open)
	require.Equal(t, 1, hub.Clients())
	cancelB()
	assert.Zero(t, hub.Clients())
}
