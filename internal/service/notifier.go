package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"

	"github.com/google/uuid"
)

// Event is a lifecycle event produced by a successful transition.
type Event struct {
	ProjectID  uuid.UUID `json:"project_id"`
	ClientID   uuid.UUID `json:"client_id"`
	Type       string    `json:"notification_type"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"created_at"`
}

// EventSink persists or dispatches events. Sinks may fail; the Notifier absorbs it.
type EventSink interface {
	Name() string
	Deliver(ctx context.Context, event Event) error
}

// Notifier emits events to every configured sink. It has no error result:
// emission can never change the outcome of the transition that caused it.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

type notifier struct {
	sinks  []EventSink
	logger *slog.Logger
}

func NewNotifier(logger *slog.Logger, sinks ...EventSink) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &notifier{sinks: sinks, logger: logger}
}

func (n *notifier) Notify(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	for _, sink := range n.sinks {
		n.deliver(ctx, sink, event)
	}
}

func (n *notifier) deliver(ctx context.Context, sink EventSink, event Event) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.ErrorContext(ctx, "notification sink panicked",
				"sink", sink.Name(), "project_id", event.ProjectID, "type", event.Type, "panic", fmt.Sprint(r))
		}
	}()
	if err := sink.Deliver(ctx, event); err != nil {
		n.logger.WarnContext(ctx, "notification not delivered",
			"sink", sink.Name(), "project_id", event.ProjectID, "type", event.Type, "error", err)
	}
}

type storeSink struct {
	repo repository.NotificationRepository
}

// NewStoreSink writes events to the notifications table.
func NewStoreSink(repo repository.NotificationRepository) EventSink {
	return &storeSink{repo: repo}
}

func (s *storeSink) Name() string { return "store" }

func (s *storeSink) Deliver(ctx context.Context, event Event) error {
	n := &model.Notification{
		ProjectID:        event.ProjectID,
		NotificationType: event.Type,
		Message:          event.Message,
		CreatedAt:        event.OccurredAt,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

func projectEvent(p *model.Project, eventType, message string) Event {
	return Event{ProjectID: p.ID, ClientID: p.ClientID, Type: eventType, Message: message}
}
