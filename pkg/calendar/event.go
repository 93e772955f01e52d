package calendar

import "time"

// Event is a calendar entry as stored by the backend. IDs are assigned by the
// backend; this system never mints or reuses them.
type Event struct {
	ID          string
	Summary     string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Location    string
	Description string
}

// EventDraft is an event that has not been created yet, typically produced by
// the extractor and confirmed by the user before insertion.
type EventDraft struct {
	Summary     string
	Start       time.Time
	End         time.Time
	Location    string
	Description string
}

// EventUpdate describes a partial change to an existing event. Nil fields are
// left unchanged; a non-nil empty string clears the field.
type EventUpdate struct {
	EventID     string
	Summary     *string
	Start       *time.Time
	End         *time.Time
	Location    *string
	Description *string
}

// IsEmpty reports whether the update carries no change at all.
func (u EventUpdate) IsEmpty() bool {
	return u.Summary == nil && u.Start == nil && u.End == nil && u.Location == nil && u.Description == nil
}
