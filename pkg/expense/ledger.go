package expense

import "context"

// Ledger is the append-only storage behind the expense tracker.
type Ledger interface {
	// Append stores a new record.
	Append(ctx context.Context, record Record) error
	// All returns every stored record.
	All(ctx context.Context) ([]Record, error)
}
