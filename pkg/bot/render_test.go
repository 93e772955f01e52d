package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendario/spendario/pkg/calendar"
	"github.com/spendario/spendario/pkg/expense"
	"github.com/stretchr/testify/assert"
)

func TestRenderEventList(t *testing.T) {
	t.Run("should render numbered events with their optional fields", func(t *testing.T) {
		// given
		events := []calendar.Event{
			{
				ID:          "ev1",
				Summary:     "Riunione",
				Start:       time.Date(2025, 3, 13, 15, 0, 0, 0, time.UTC),
				End:         time.Date(2025, 3, 13, 16, 0, 0, 0, time.UTC),
				Location:    "Ufficio",
				Description: strings.Repeat("x", 60),
			},
			{
				ID:     "ev2",
				Start:  time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
				End:    time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
				AllDay: true,
			},
		}

		// when
		text := renderEventList(events)

		// then
		assert.Equal(t, "📅 *Eventi in programma:*\n\n"+
			"*1. Riunione*\n"+
			"📆 13/03/2025 15:00\n"+
			"📍 Ufficio\n"+
			"📝 "+strings.Repeat("x", 47)+"...\n"+
			"ID: `ev1`\n\n"+
			"*2. Evento senza titolo*\n"+
			"📆 14/03/2025 (tutto il giorno)\n"+
			"ID: `ev2`", text)
	})

	t.Run("should report an empty list", func(t *testing.T) {
		assert.Equal(t, "Nessun evento in programma.", renderEventList(nil))
	})
}

func TestRenderDraftPreview(t *testing.T) {
	t.Run("should skip location and description when absent", func(t *testing.T) {
		// given
		draft := calendar.EventDraft{
			Summary: "Dentista",
			Start:   time.Date(2025, 3, 20, 9, 30, 0, 0, time.UTC),
			End:     time.Date(2025, 3, 20, 10, 30, 0, 0, time.UTC),
		}

		// when
		text := renderDraftPreview(draft)

		// then
		assert.Equal(t, "*Evento:* Dentista\n"+
			"*Inizio:* 20/03/2025 09:30\n"+
			"*Fine:* 20/03/2025 10:30\n"+
			"\nConfermi la creazione dell'evento?", text)
	})
}

func TestRenderReport(t *testing.T) {
	t.Run("should order the breakdown alphabetically", func(t *testing.T) {
		// given
		summary := expense.Summary{
			Period: expense.PeriodWeek,
			Total:  decimal.RequireFromString("77.25"),
			ByCategory: map[string]decimal.Decimal{
				"Svago":      decimal.RequireFromString("20"),
				"Alimentari": decimal.RequireFromString("45.25"),
				"Casa":       decimal.RequireFromString("12"),
			},
			Count: 3,
		}

		// when
		text := renderReport(summary)

		// then
		assert.Equal(t, "📊 *Report spese questa settimana*\n\n"+
			"Totale: 77.25€\n\n"+
			"*Dettaglio per categoria:*\n"+
			"- Alimentari: 45.25€\n"+
			"- Casa: 12.00€\n"+
			"- Svago: 20.00€", text)
	})

	t.Run("should omit the breakdown when filtered by category", func(t *testing.T) {
		// given
		summary := expense.Summary{
			Period:   expense.PeriodAll,
			Category: "Casa",
			Total:    decimal.RequireFromString("30"),
			ByCategory: map[string]decimal.Decimal{
				"Casa": decimal.RequireFromString("30"),
			},
			Count: 2,
		}

		// when
		text := renderReport(summary)

		// then
		assert.Equal(t, "📊 *Report spese totali nella categoria 'Casa'*\n\nTotale: 30.00€", text)
	})

	t.Run("should name the empty period and category", func(t *testing.T) {
		assert.Equal(t, "Nessuna spesa oggi.", renderReport(expense.Summary{Period: expense.PeriodDay}))
		assert.Equal(t, "Nessuna spesa oggi nella categoria 'Svago'.", renderReport(expense.Summary{Period: expense.PeriodDay, Category: "Svago"}))
	})
}

func TestTruncate(t *testing.T) {
	t.Run("should keep text at the limit untouched", func(t *testing.T) {
		text := strings.Repeat("x", 50)
		assert.Equal(t, text, truncate(text, 50))
	})

	t.Run("should shorten longer text with an ellipsis", func(t *testing.T) {
		shortened := truncate(strings.Repeat("x", 51), 50)
		assert.Equal(t, strings.Repeat("x", 47)+"...", shortened)
		assert.Len(t, []rune(shortened), 50)
	})
}
