package calendar

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spendario/spendario/internal/event_bus"
	"github.com/spendario/spendario/internal/utils"
)

type Service interface {
	// Create inserts a new event. A draft without an end time gets one hour
	// after the start time.
	Create(ctx context.Context, draft EventDraft) (Event, error)
	// Update fetches the event first and applies only the fields the update
	// carries, so an event that vanished in the meantime is reported as
	// ErrNotFound instead of being recreated blindly.
	Update(ctx context.Context, update EventUpdate) (Event, error)
	// Delete removes the event and returns the summary it had, for use in the
	// confirmation message.
	Delete(ctx context.Context, eventId string) (string, error)
	// Upcoming returns up to max events starting from now.
	Upcoming(ctx context.Context, max int) ([]Event, error)
}

type ServiceImpl struct {
	provider Provider
	bus      *event_bus.EventBus
	clock    utils.Clock
}

func NewService(provider Provider, bus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		provider: provider,
		bus:      bus,
		clock:    clock,
	}
}

func (s *ServiceImpl) Create(ctx context.Context, draft EventDraft) (Event, error) {
	if draft.End.IsZero() || draft.End.Before(draft.Start) {
		draft.End = draft.Start.Add(time.Hour)
	}

	log.Debugf("Creating event %q (%s - %s)", draft.Summary, draft.Start, draft.End)
	event, err := s.provider.Insert(ctx, draft)
	if err != nil {
		return Event{}, fmt.Errorf("failed to create event: %w", err)
	}

	s.publish(ctx, event_bus.CalendarEventCreatedEvent, event)
	return event, nil
}

func (s *ServiceImpl) Update(ctx context.Context, update EventUpdate) (Event, error) {
	event, err := s.provider.Get(ctx, update.EventID)
	if err != nil {
		return Event{}, fmt.Errorf("failed to fetch event %s: %w", update.EventID, err)
	}

	if update.Summary != nil && *update.Summary != "" {
		event.Summary = *update.Summary
	}
	if update.Location != nil {
		event.Location = *update.Location
	}
	if update.Description != nil {
		event.Description = *update.Description
	}
	if update.Start != nil {
		event.Start = *update.Start
		event.AllDay = false
	}
	if update.End != nil {
		event.End = *update.End
		event.AllDay = false
	}

	log.Debugf("Updating event %s (%q)", event.ID, event.Summary)
	updated, err := s.provider.Update(ctx, event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to update event %s: %w", event.ID, err)
	}

	s.publish(ctx, event_bus.CalendarEventUpdatedEvent, updated)
	return updated, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, eventId string) (string, error) {
	event, err := s.provider.Get(ctx, eventId)
	if err != nil {
		return "", fmt.Errorf("failed to fetch event %s: %w", eventId, err)
	}
	summary := event.Summary
	if summary == "" {
		summary = "Evento sconosciuto"
	}

	log.Debugf("Deleting event %s (%q)", eventId, summary)
	if err := s.provider.Delete(ctx, eventId); err != nil {
		return "", fmt.Errorf("failed to delete event %s: %w", eventId, err)
	}

	s.publish(ctx, event_bus.CalendarEventDeletedEvent, event)
	return summary, nil
}

func (s *ServiceImpl) Upcoming(ctx context.Context, max int) ([]Event, error) {
	events, err := s.provider.List(ctx, s.clock.Now(), max)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	return events, nil
}

func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, event Event) {
	e := event_bus.NewEvent(ctx, eventType, event_bus.CalendarEventChanged{
		ID:      event.ID,
		Summary: event.Summary,
		Start:   event.Start,
		End:     event.End,
	})
	if err := s.bus.Publish(e); err != nil {
		log.Warnf("failed to publish %s event: %v", eventType, err)
	}
}
