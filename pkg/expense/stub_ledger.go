package expense

import (
	"context"
	"sync"
)

type LedgerStub struct {
	mu        sync.RWMutex
	records   []Record
	appendErr error
	allErr    error
}

func NewLedgerStub() *LedgerStub {
	return &LedgerStub{}
}

func (s *LedgerStub) Append(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.appendErr != nil {
		return s.appendErr
	}
	s.records = append(s.records, record)
	return nil
}

func (s *LedgerStub) All(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.allErr != nil {
		return nil, s.allErr
	}
	result := make([]Record, len(s.records))
	copy(result, s.records)
	return result, nil
}

func (s *LedgerStub) SetRecords(records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
}

func (s *LedgerStub) SetAppendError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendErr = err
}

func (s *LedgerStub) SetAllError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allErr = err
}

func (s *LedgerStub) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.appendErr = nil
	s.allErr = nil
}
