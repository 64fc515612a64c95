package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/broker"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/sse"
)

// EmailSink mails every recipient that has an address.
type EmailSink struct {
	email email.EmailService
}

func NewEmailSink(emailService email.EmailService) *EmailSink {
	return &EmailSink{email: emailService}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Send(ctx context.Context, event notification.Event) error {
	subject, headline := describe(event)

	var errs []error
	for _, r := range event.Recipients {
		if r.Email == "" {
			continue
		}
		err := s.email.SendLeaveUpdate(r.Email, subject, email.LeaveUpdateData{
			RecipientName: r.Name,
			Headline:      headline,
			EmployeeName:  event.EmployeeName,
			LeaveType:     event.LeaveType,
			StartDate:     event.StartDate,
			EndDate:       event.EndDate,
			TotalDays:     event.TotalDays,
			Status:        event.Status,
			Reason:        event.Reason,
			Comment:       event.Comment,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("mail %s: %w", r.Email, err))
		}
	}
	return errors.Join(errs...)
}

// SSESink pushes the event to the open streams of every recipient.
type SSESink struct {
	hub *sse.Hub
}

func NewSSESink(hub *sse.Hub) *SSESink {
	return &SSESink{hub: hub}
}

func (s *SSESink) Name() string { return "sse" }

func (s *SSESink) Send(ctx context.Context, event notification.Event) error {
	for _, r := range event.Recipients {
		if r.UserID == "" {
			continue
		}
		s.hub.Publish(r.UserID, sse.Event{ID: event.ID, Event: string(event.Type), Data: event})
	}
	return nil
}

// BrokerSink writes the event to the Kafka topic keyed by request ID.
type BrokerSink struct {
	publisher *broker.Publisher
}

func NewBrokerSink(publisher *broker.Publisher) *BrokerSink {
	return &BrokerSink{publisher: publisher}
}

func (s *BrokerSink) Name() string { return "kafka" }

func (s *BrokerSink) Send(ctx context.Context, event notification.Event) error {
	return s.publisher.Publish(ctx, event.RequestID, string(event.Type), event)
}

func describe(event notification.Event) (subject, headline string) {
	switch event.Type {
	case notification.TypeLeaveSubmitted:
		return fmt.Sprintf("Leave request from %s", event.EmployeeName),
			fmt.Sprintf("%s submitted a %s leave request", event.EmployeeName, event.LeaveType)
	case notification.TypeLeaveCancelled:
		return fmt.Sprintf("Leave request cancelled by %s", event.EmployeeName),
			fmt.Sprintf("%s cancelled a %s leave request", event.EmployeeName, event.LeaveType)
	default:
		return fmt.Sprintf("Your leave request was %s", strings.ToLower(event.Status)),
			fmt.Sprintf("Your %s leave request was %s", event.LeaveType, strings.ToLower(event.Status))
	}
}
