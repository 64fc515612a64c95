package sse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyTarget(t *testing.T) {
	hub := NewHub()

	a1, closeA1 := hub.Subscribe("alice")
	a2, closeA2 := hub.Subscribe("alice")
	b, closeB := hub.Subscribe("bob")
	defer closeA1()
	defer closeA2()
	defer closeB()

	n := hub.Publish("alice", Event{Event: "leave.submitted", Data: "x"})
	assert.Equal(t, 2, n)

	assert.Equal(t, "leave.submitted", (<-a1).Event)
	assert.Equal(t, "leave.submitted", (<-a2).Event)
	assert.Empty(t, b)
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("alice")
	assert.Equal(t, 1, hub.SubscriberCount("alice"))

	cleanup()
	cleanup()

	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, hub.SubscriberCount("alice"))
	assert.Zero(t, hub.Publish("alice", Event{}))
}

func TestHub_FullBufferDrops(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("alice")
	defer cleanup()

	for i := 0; i < bufferSize; i++ {
		require.Equal(t, 1, hub.Publish("alice", Event{}))
	}
	assert.Zero(t, hub.Publish("alice", Event{}))
}

func TestEvent_WriteTo(t *testing.T) {
	var buf bytes.Buffer
	_, err := Event{ID: "1", Event: "leave.cancelled", Data: map[string]string{"status": "CANCELLED"}}.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "id: 1\nevent: leave.cancelled\ndata: {\"status\":\"CANCELLED\"}\n\n", buf.String())
}
