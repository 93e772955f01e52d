package event_bus

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ExpenseRecordedEvent      EventType = "expense.recorded"
	CalendarEventCreatedEvent EventType = "calendar.event.created"
	CalendarEventUpdatedEvent EventType = "calendar.event.updated"
	CalendarEventDeletedEvent EventType = "calendar.event.deleted"
)

// ExpenseRecorded is published after a row has been appended to the ledger.
type ExpenseRecorded struct {
	Date        time.Time
	Amount      decimal.Decimal
	Category    string
	Description string
}

// CalendarEventChanged is published after a calendar mutation. For deletions
// Start and End carry the times the event had before it was removed.
type CalendarEventChanged struct {
	ID      string
	Summary string
	Start   time.Time
	End     time.Time
}
