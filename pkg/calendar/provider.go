package calendar

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("event not found")

// Provider is the calendar backend behind the service.
type Provider interface {
	Insert(ctx context.Context, draft EventDraft) (Event, error)
	Get(ctx context.Context, eventId string) (Event, error)
	Update(ctx context.Context, event Event) (Event, error)
	Delete(ctx context.Context, eventId string) error
	// List returns up to max events starting at or after from, with recurring
	// events expanded into single instances, ordered by start time.
	List(ctx context.Context, from time.Time, max int) ([]Event, error)
}
