package expense

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spendario/spendario/internal/event_bus"
	"github.com/spendario/spendario/internal/utils"
	log "github.com/sirupsen/logrus"
)

// Summary is the aggregation of the records matching a report query.
type Summary struct {
	Period     Period
	Category   string
	Total      decimal.Decimal
	ByCategory map[string]decimal.Decimal
	Count      int
}

type Service interface {
	// Add validates and appends a new expense stamped with the current date.
	Add(ctx context.Context, amount decimal.Decimal, category string, description string) (Record, error)
	// Report aggregates the records falling in the period, optionally
	// filtered by category. An empty category means no filter.
	Report(ctx context.Context, period Period, category string) (Summary, error)
	Categories() []string
}

type ServiceImpl struct {
	ledger     Ledger
	categories []string
	bus        *event_bus.EventBus
	clock      utils.Clock
}

func NewService(ledger Ledger, categories []string, bus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		ledger:     ledger,
		categories: categories,
		bus:        bus,
		clock:      clock,
	}
}

func (s *ServiceImpl) Add(ctx context.Context, amount decimal.Decimal, category string, description string) (Record, error) {
	if !s.isValidCategory(category) {
		return Record{}, fmt.Errorf("%w: %s", ErrInvalidCategory, category)
	}
	if !amount.IsPositive() {
		return Record{}, fmt.Errorf("%w: %s", ErrAmountNotPositive, amount)
	}

	record := Record{
		Date:        s.clock.Now(),
		Amount:      amount,
		Category:    category,
		Description: description,
	}
	log.Debugf("Appending expense: %s %s (%s)", record.Amount, record.Category, record.Description)
	if err := s.ledger.Append(ctx, record); err != nil {
		return Record{}, fmt.Errorf("failed to append expense to ledger: %w", err)
	}

	event := event_bus.NewEvent(ctx, event_bus.ExpenseRecordedEvent, event_bus.ExpenseRecorded{
		Date:        record.Date,
		Amount:      record.Amount,
		Category:    record.Category,
		Description: record.Description,
	})
	if err := s.bus.Publish(event); err != nil {
		log.Warnf("failed to publish expense recorded event: %v", err)
	}

	return record, nil
}

func (s *ServiceImpl) Report(ctx context.Context, period Period, category string) (Summary, error) {
	if category != "" && !s.isValidCategory(category) {
		return Summary{}, fmt.Errorf("%w: %s", ErrInvalidCategory, category)
	}

	records, err := s.ledger.All(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read expenses from ledger: %w", err)
	}

	now := s.clock.Now()
	summary := Summary{
		Period:     period,
		Category:   category,
		Total:      decimal.Zero,
		ByCategory: map[string]decimal.Decimal{},
	}
	for _, record := range records {
		if !InPeriod(period, record.Date, now) {
			continue
		}
		if category != "" && record.Category != category {
			continue
		}
		summary.Total = summary.Total.Add(record.Amount)
		summary.ByCategory[record.Category] = summary.ByCategory[record.Category].Add(record.Amount)
		summary.Count++
	}
	return summary, nil
}

func (s *ServiceImpl) Categories() []string {
	return s.categories
}

func (s *ServiceImpl) isValidCategory(category string) bool {
	for _, c := range s.categories {
		if c == category {
			return true
		}
	}
	return false
}
