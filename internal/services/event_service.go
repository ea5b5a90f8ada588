package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/inventory-manager-be/internal/auth"
	"github.com/isdelr/inventory-manager-be/internal/models"
	"github.com/rs/zerolog/log"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, actor *string) error
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
}

// EventPublisher receives every event after it is stored.
type EventPublisher interface {
	Publish(event models.Event)
}

// EventService provides business logic for event management.
type EventService struct {
	db        *sql.DB
	publisher EventPublisher
}

// NewEventService creates a new EventService. publisher may be nil.
func NewEventService(db *sql.DB, publisher EventPublisher) *EventService {
	return &EventService{db: db, publisher: publisher}
}

// CreateEvent logs a new event to the database and forwards it to the
// publisher.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, actor *string) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		Actor:     actor,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, type, level, message, actor, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.Actor, event.CreatedAt)
	if err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.Publish(event)
	}
	return nil
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, level, message, actor, created_at FROM events ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.Actor, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// record stores an event without failing the caller's operation.
func record(ctx context.Context, events EventServiceProvider, eventType, level, message string, actor *string) {
	if events == nil {
		return
	}
	if err := events.CreateEvent(ctx, eventType, level, message, actor); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}
}

// actorFromContext returns the username of the request's principal, or nil
// for system actions.
func actorFromContext(ctx context.Context) *string {
	p, ok := auth.PrincipalFrom(ctx)
	if !ok || p.Username == "" {
		return nil
	}
	return &p.Username
}
