package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
)

// Config holds notification service configuration
type Config struct {
	WorkerCount int           // default: 2
	QueueSize   int           // default: 1000
	SendTimeout time.Duration // default: 30 seconds
}

type service struct {
	sinks  []notification.Sink
	config Config

	queue    chan notification.Event
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService starts the background workers that deliver events to every sink.
func NewNotificationService(cfg Config, sinks ...notification.Sink) notification.Service {
	// Set defaults
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = 30 * time.Second
	}

	s := &service{
		sinks:  sinks,
		config: cfg,
		queue:  make(chan notification.Event, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	names := make([]string, 0, len(sinks))
	for _, sink := range sinks {
		names = append(names, sink.Name())
	}
	slog.Info("notification service started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize, "sinks", names)

	return s
}

// Publish enqueues event without blocking. A full queue drops the event.
func (s *service) Publish(ctx context.Context, event notification.Event) {
	select {
	case <-s.stopCh:
		slog.Warn("notification service stopped, dropping event", "type", event.Type, "request_id", event.RequestID)
		return
	default:
	}

	select {
	case s.queue <- event:
	default:
		slog.Warn("notification queue full, dropping event", "type", event.Type, "request_id", event.RequestID)
	}
}

func (s *service) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case event := <-s.queue:
			s.deliver(id, event)
		case <-s.stopCh:
			// Drain what is already queued before exiting.
			for {
				select {
				case event := <-s.queue:
					s.deliver(id, event)
				default:
					return
				}
			}
		}
	}
}

func (s *service) deliver(worker int, event notification.Event) {
	for _, sink := range s.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.SendTimeout)
		err := s.send(ctx, sink, event)
		cancel()
		if err != nil {
			slog.Error("notification delivery failed",
				"worker", worker,
				"sink", sink.Name(),
				"type", event.Type,
				"request_id", event.RequestID,
				"error", err,
			)
		}
	}
}

func (s *service) send(ctx context.Context, sink notification.Sink, event notification.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()
	return sink.Send(ctx, event)
}

// Stop delivers queued events and waits for the workers to exit.
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("notification service stopped")
	})
}
