package broker

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w)

	err := p.Publish(context.Background(), "req-1", "leave.submitted", map[string]string{"status": "PENDING"})
	require.NoError(t, err)

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "req-1", string(msg.Key))
	assert.JSONEq(t, `{"status":"PENDING"}`, string(msg.Value))
	assert.Equal(t, []kafka.Header{{Key: "event_type", Value: []byte("leave.submitted")}}, msg.Headers)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_Errors(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := NewPublisher(w)

	err := p.Publish(context.Background(), "k", "leave.cancelled", struct{}{})
	assert.ErrorContains(t, err, "leader not available")

	err = p.Publish(context.Background(), "k", "leave.cancelled", make(chan int))
	assert.ErrorContains(t, err, "marshal leave.cancelled event")
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, "leave-events")
	defer w.Close()

	assert.Equal(t, "leave-events", w.Topic)
	assert.Equal(t, "localhost:9092", w.Addr.String())
}
