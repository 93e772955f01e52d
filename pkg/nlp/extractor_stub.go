package nlp

import (
	"context"
	"sync"

	"github.com/spendario/spendario/pkg/calendar"
)

// ExtractorStub is an in-memory Extractor for testing the layers above.
type ExtractorStub struct {
	mu               sync.RWMutex
	draft            calendar.EventDraft
	update           calendar.EventUpdate
	target           int
	eventCalls       int
	updateCalls      int
	targetCalls      int
	extractEventErr  error
	extractUpdateErr error
	resolveTargetErr error
}

func NewExtractorStub() *ExtractorStub {
	return &ExtractorStub{}
}

func (s *ExtractorStub) ExtractEvent(ctx context.Context, text string) (calendar.EventDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.eventCalls++
	if s.extractEventErr != nil {
		return calendar.EventDraft{}, s.extractEventErr
	}
	return s.draft, nil
}

func (s *ExtractorStub) ExtractUpdate(ctx context.Context, text string, eventId string) (calendar.EventUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updateCalls++
	if s.extractUpdateErr != nil {
		return calendar.EventUpdate{}, s.extractUpdateErr
	}
	update := s.update
	update.EventID = eventId
	return update, nil
}

func (s *ExtractorStub) ResolveTarget(ctx context.Context, text string, candidates []calendar.Event) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.targetCalls++
	if s.resolveTargetErr != nil {
		return 0, s.resolveTargetErr
	}
	return s.target, nil
}

// Helper methods for test setup

func (s *ExtractorStub) SetDraft(draft calendar.EventDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = draft
}

func (s *ExtractorStub) SetUpdate(update calendar.EventUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.update = update
}

func (s *ExtractorStub) SetTarget(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = index
}

func (s *ExtractorStub) EventCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventCalls
}

func (s *ExtractorStub) UpdateCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updateCalls
}

func (s *ExtractorStub) TargetCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.targetCalls
}

// Error setters for testing error scenarios

func (s *ExtractorStub) SetExtractEventError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extractEventErr = err
}

func (s *ExtractorStub) SetExtractUpdateError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extractUpdateErr = err
}

func (s *ExtractorStub) SetResolveTargetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolveTargetErr = err
}

// Reset clears all data
func (s *ExtractorStub) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = calendar.EventDraft{}
	s.update = calendar.EventUpdate{}
	s.target = 0
	s.eventCalls = 0
	s.updateCalls = 0
	s.targetCalls = 0
	s.extractEventErr = nil
	s.extractUpdateErr = nil
	s.resolveTargetErr = nil
}
