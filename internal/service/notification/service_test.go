package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/broker"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/sse"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	name  string
	err   error
	block chan struct{}

	mu     sync.Mutex
	events []notification.Event
}

func (s *fakeSink) Name() string { return s.name }

func (s *fakeSink) Send(ctx context.Context, event notification.Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type panicSink struct{}

func (panicSink) Name() string { return "panic" }

func (panicSink) Send(context.Context, notification.Event) error { panic("boom") }

func sampleEvent(id string) notification.Event {
	return notification.Event{
		ID:           id,
		Type:         notification.TypeLeaveStatusChanged,
		RequestID:    "req-" + id,
		EmployeeName: "Ana",
		LeaveType:    "Annual",
		StartDate:    "2025-04-07",
		EndDate:      "2025-04-09",
		TotalDays:    "3.0",
		Status:       "APPROVED",
		Recipients:   []notification.Recipient{{UserID: "u-ana", Email: "ana@example.com", Name: "Ana"}},
	}
}

func TestService_DeliversToEverySink(t *testing.T) {
	failing := &fakeSink{name: "failing", err: errors.New("smtp down")}
	ok := &fakeSink{name: "ok"}
	svc := NewNotificationService(Config{WorkerCount: 2}, panicSink{}, failing, ok)

	for i := 0; i < 5; i++ {
		svc.Publish(context.Background(), sampleEvent(string(rune('a'+i))))
	}
	svc.Stop()

	assert.Equal(t, 5, failing.count())
	assert.Equal(t, 5, ok.count())
}

func TestService_QueueOverflowDrops(t *testing.T) {
	block := make(chan struct{})
	sink := &fakeSink{name: "slow", block: block}
	svc := NewNotificationService(Config{WorkerCount: 1, QueueSize: 1}, sink)

	// The first event occupies the worker and the second fills the queue.
	svc.Publish(context.Background(), sampleEvent("1"))
	require.Eventually(t, func() bool {
		return len(svc.(*service).queue) == 0
	}, time.Second, 5*time.Millisecond)
	svc.Publish(context.Background(), sampleEvent("2"))
	svc.Publish(context.Background(), sampleEvent("3"))

	close(block)
	svc.Stop()
	assert.Equal(t, 2, sink.count())
}

func TestService_PublishAfterStop(t *testing.T) {
	sink := &fakeSink{name: "ok"}
	svc := NewNotificationService(Config{}, sink)
	svc.Stop()
	svc.Stop()

	svc.Publish(context.Background(), sampleEvent("1"))
	assert.Zero(t, sink.count())
}

func TestSSESink_Send(t *testing.T) {
	hub := sse.NewHub()
	ch, cleanup := hub.Subscribe("u-ana")
	defer cleanup()

	event := sampleEvent("1")
	event.Recipients = append(event.Recipients, notification.Recipient{Email: "noaccount@example.com"})
	require.NoError(t, NewSSESink(hub).Send(context.Background(), event))

	got := <-ch
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, string(notification.TypeLeaveStatusChanged), got.Event)
	assert.Equal(t, event, got.Data)
}

type fakeEmail struct {
	subjects []string
	to       []string
	err      error
}

func (f *fakeEmail) SendLeaveUpdate(to, subject string, data email.LeaveUpdateData) error {
	f.to = append(f.to, to)
	f.subjects = append(f.subjects, subject)
	return f.err
}

func TestEmailSink_Send(t *testing.T) {
	mail := &fakeEmail{}
	event := sampleEvent("1")
	event.Recipients = append(event.Recipients, notification.Recipient{UserID: "u-no-mail"})

	require.NoError(t, NewEmailSink(mail).Send(context.Background(), event))
	assert.Equal(t, []string{"ana@example.com"}, mail.to)
	assert.Equal(t, []string{"Your leave request was approved"}, mail.subjects)

	mail.err = errors.New("rejected")
	assert.ErrorContains(t, NewEmailSink(mail).Send(context.Background(), event), "mail ana@example.com")
}

func TestDescribe(t *testing.T) {
	event := sampleEvent("1")

	event.Type = notification.TypeLeaveSubmitted
	subject, _ := describe(event)
	assert.Equal(t, "Leave request from Ana", subject)

	event.Type = notification.TypeLeaveCancelled
	_, headline := describe(event)
	assert.Equal(t, "Ana cancelled a Annual leave request", headline)
}

type recordingWriter struct {
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestBrokerSink_Send(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, NewBrokerSink(broker.NewPublisher(w)).Send(context.Background(), sampleEvent("1")))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "req-1", string(w.msgs[0].Key))
	assert.Contains(t, string(w.msgs[0].Value), `"type":"leave.status_changed"`)
}
