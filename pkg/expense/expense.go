package expense

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountNotANumber  = errors.New("amount is not a number")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrInvalidCategory   = errors.New("category is not in the configured set")
)

// Record is a single ledger row. Records are append-only: once written they
// are never updated or deleted by this system.
type Record struct {
	Date        time.Time
	Amount      decimal.Decimal
	Category    string
	Description string
}

// ParseAmount parses a user-entered amount, accepting both comma and dot as
// the decimal separator. Only positive values are valid.
func ParseAmount(text string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrAmountNotANumber, text)
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrAmountNotPositive, text)
	}
	return amount, nil
}
