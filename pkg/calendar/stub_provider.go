package calendar

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type StubProvider struct {
	mu        sync.RWMutex
	events    map[string]Event
	insertErr error
	getErr    error
	updateErr error
	deleteErr error
	listErr   error
}

func NewStubProvider() *StubProvider {
	return &StubProvider{events: make(map[string]Event)}
}

func (s *StubProvider) Insert(ctx context.Context, draft EventDraft) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertErr != nil {
		return Event{}, s.insertErr
	}
	event := Event{
		ID:          uuid.NewString(),
		Summary:     draft.Summary,
		Start:       draft.Start,
		End:         draft.End,
		Location:    draft.Location,
		Description: draft.Description,
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *StubProvider) Get(ctx context.Context, eventId string) (Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.getErr != nil {
		return Event{}, s.getErr
	}
	event, ok := s.events[eventId]
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrNotFound, eventId)
	}
	return event, nil
}

func (s *StubProvider) Update(ctx context.Context, event Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updateErr != nil {
		return Event{}, s.updateErr
	}
	if _, ok := s.events[event.ID]; !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrNotFound, event.ID)
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *StubProvider) Delete(ctx context.Context, eventId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.events[eventId]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, eventId)
	}
	delete(s.events, eventId)
	return nil
}

func (s *StubProvider) List(ctx context.Context, from time.Time, max int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listErr != nil {
		return nil, s.listErr
	}
	var events []Event
	for _, event := range s.events {
		if event.End.Before(from) {
			continue
		}
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	if len(events) > max {
		events = events[:max]
	}
	return events, nil
}

// Helper methods for test setup

func (s *StubProvider) SetEvents(events []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string]Event, len(events))
	for _, event := range events {
		s.events[event.ID] = event
	}
}

func (s *StubProvider) Stored(eventId string) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[eventId]
	return event, ok
}

func (s *StubProvider) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (s *StubProvider) SetInsertError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertErr = err
}

func (s *StubProvider) SetGetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

func (s *StubProvider) SetUpdateError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateErr = err
}

func (s *StubProvider) SetDeleteError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
}

func (s *StubProvider) SetListError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

func (s *StubProvider) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string]Event)
	s.insertErr = nil
	s.getErr = nil
	s.updateErr = nil
	s.deleteErr = nil
	s.listErr = nil
}
