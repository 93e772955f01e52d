package expense

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendario/spendario/internal/event_bus"
	"github.com/spendario/spendario/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCategories = []string{"Alimentari", "Trasporti", "Casa", "Altro"}

var errLedgerTest = errors.New("ledger test error")

func setupServiceTest(t *testing.T) (*ServiceImpl, *LedgerStub, *utils.MockClock) {
	ledger := NewLedgerStub()
	clock := &utils.MockClock{}
	// Wednesday afternoon
	clock.SetNow(time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC))
	service := NewService(ledger, testCategories, event_bus.NewEventBus(), clock)
	t.Cleanup(func() {
		ledger.Reset()
	})
	return service, ledger, clock
}

func TestServiceImpl_Add(t *testing.T) {
	t.Run("should append expense stamped with the current date", func(t *testing.T) {
		// given
		service, ledger, clock := setupServiceTest(t)
		amount := decimal.RequireFromString("12.50")

		// when
		record, err := service.Add(context.Background(), amount, "Trasporti", "benzina")

		// then
		require.NoError(t, err)
		assert.Equal(t, clock.Now(), record.Date)
		assert.Equal(t, "Trasporti", record.Category)
		assert.Equal(t, "benzina", record.Description)
		stored, err := ledger.All(context.Background())
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.True(t, stored[0].Amount.Equal(amount))
	})

	t.Run("should reject category outside the configured set", func(t *testing.T) {
		// given
		service, ledger, _ := setupServiceTest(t)

		// when
		_, err := service.Add(context.Background(), decimal.RequireFromString("5"), "Vacanze", "")

		// then
		assert.ErrorIs(t, err, ErrInvalidCategory)
		stored, _ := ledger.All(context.Background())
		assert.Empty(t, stored)
	})

	t.Run("should reject non-positive amount", func(t *testing.T) {
		// given
		service, _, _ := setupServiceTest(t)

		// when
		_, err := service.Add(context.Background(), decimal.Zero, "Casa", "")

		// then
		assert.ErrorIs(t, err, ErrAmountNotPositive)
	})

	t.Run("should propagate ledger failure", func(t *testing.T) {
		// given
		service, ledger, _ := setupServiceTest(t)
		ledger.SetAppendError(errLedgerTest)

		// when
		_, err := service.Add(context.Background(), decimal.RequireFromString("5"), "Casa", "")

		// then
		assert.ErrorIs(t, err, errLedgerTest)
	})

	t.Run("should publish an event after recording", func(t *testing.T) {
		// given
		ledger := NewLedgerStub()
		clock := &utils.MockClock{}
		clock.SetNow(time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC))
		bus := event_bus.NewEventBus()
		service := NewService(ledger, testCategories, bus, clock)

		var published []event_bus.ExpenseRecorded
		unsubscribe := event_bus.SubscribeTyped[event_bus.ExpenseRecorded](bus, event_bus.ExpenseRecordedEvent,
			func(e event_bus.EventT[event_bus.ExpenseRecorded]) error {
				published = append(published, e.Data)
				return nil
			})
		defer unsubscribe()

		// when
		_, err := service.Add(context.Background(), decimal.RequireFromString("9.99"), "Alimentari", "pane")

		// then
		require.NoError(t, err)
		require.Len(t, published, 1)
		assert.Equal(t, "Alimentari", published[0].Category)
		assert.True(t, published[0].Amount.Equal(decimal.RequireFromString("9.99")))
	})
}

func TestServiceImpl_Report(t *testing.T) {
	records := []Record{
		{Date: time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("10.00"), Category: "Trasporti"},
		{Date: time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("20.50"), Category: "Alimentari"},
		{Date: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("5.25"), Category: "Trasporti"},
		{Date: time.Date(2025, 2, 27, 9, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("100.00"), Category: "Casa"},
		{Date: time.Date(2024, 12, 31, 9, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("7.00"), Category: "Altro"},
	}

	t.Run("should sum records of the current month grouped by category", func(t *testing.T) {
		// given
		service, ledger, _ := setupServiceTest(t)
		ledger.SetRecords(records)

		// when
		summary, err := service.Report(context.Background(), PeriodMonth, "")

		// then
		require.NoError(t, err)
		assert.Equal(t, 3, summary.Count)
		assert.True(t, summary.Total.Equal(decimal.RequireFromString("35.75")), "total was %s", summary.Total)
		assert.True(t, summary.ByCategory["Trasporti"].Equal(decimal.RequireFromString("15.25")))
		assert.True(t, summary.ByCategory["Alimentari"].Equal(decimal.RequireFromString("20.50")))
	})

	t.Run("should filter by category", func(t *testing.T) {
		// given
		service, ledger, _ := setupServiceTest(t)
		ledger.SetRecords(records)

		// when
		summary, err := service.Report(context.Background(), PeriodMonth, "Trasporti")

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Count)
		assert.True(t, summary.Total.Equal(decimal.RequireFromString("15.25")))
		assert.Len(t, summary.ByCategory, 1)
	})

	t.Run("should include only the current week", func(t *testing.T) {
		// given
		service, ledger, clock := setupServiceTest(t)
		// Monday 01:00; the Sunday evening record must stay out
		clock.SetNow(time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC))
		ledger.SetRecords([]Record{
			{Date: time.Date(2025, 3, 10, 0, 30, 0, 0, time.UTC), Amount: decimal.RequireFromString("3.00"), Category: "Altro"},
			{Date: time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("50.00"), Category: "Altro"},
		})

		// when
		summary, err := service.Report(context.Background(), PeriodWeek, "")

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Count)
		assert.True(t, summary.Total.Equal(decimal.RequireFromString("3.00")))
	})

	t.Run("should include every record for the all period", func(t *testing.T) {
		// given
		service, ledger, _ := setupServiceTest(t)
		ledger.SetRecords(records)

		// when
		summary, err := service.Report(context.Background(), PeriodAll, "")

		// then
		require.NoError(t, err)
		assert.Equal(t, len(records), summary.Count)
		assert.True(t, summary.Total.Equal(decimal.RequireFromString("142.75")))
	})

	t.Run("should return empty summary when nothing matches", func(t *testing.T) {
		// given
		service, ledger, _ := setupServiceTest(t)
		ledger.SetRecords(records)

		// when
		summary, err := service.Report(context.Background(), PeriodDay, "Casa")

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, summary.Count)
		assert.True(t, summary.Total.IsZero())
	})

	t.Run("should reject unknown category", func(t *testing.T) {
		// given
		service, _, _ := setupServiceTest(t)

		// when
		_, err := service.Report(context.Background(), PeriodMonth, "Vacanze")

		// then
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})

	t.Run("should propagate ledger read failure", func(t *testing.T) {
		// given
		service, ledger, _ := setupServiceTest(t)
		ledger.SetAllError(errLedgerTest)

		// when
		_, err := service.Report(context.Background(), PeriodAll, "")

		// then
		assert.ErrorIs(t, err, errLedgerTest)
	})
}
