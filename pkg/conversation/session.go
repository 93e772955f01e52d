package conversation

import (
	"github.com/shopspring/decimal"
	"github.com/spendario/spendario/pkg/calendar"
)

// Session is the per-user state of one active flow. At most one session
// exists per user; starting a new flow replaces any running one. Sessions
// live in memory only and do not survive a restart.
type Session struct {
	UserID  int64
	ChatID  int64
	Flow    string
	State   int
	Scratch Scratch
}

// Scratch holds the values collected by earlier states of a flow. The fields
// are shared across flows; each flow reads only the ones its states filled in.
type Scratch struct {
	Amount    decimal.Decimal
	AmountSet bool
	Category  string
	Draft     *calendar.EventDraft
	Events    []calendar.Event
	EventID   string
	// KeyboardMessageID is the message carrying the last inline keyboard,
	// edited in place once the user picks an option.
	KeyboardMessageID int
}
