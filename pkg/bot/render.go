package bot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spendario/spendario/pkg/calendar"
	"github.com/spendario/spendario/pkg/expense"
)

const (
	eventTimeLayout = "02/01/2006 15:04"
	eventDateLayout = "02/01/2006"

	untitledEvent = "Evento senza titolo"
)

func renderSummary(event calendar.Event) string {
	if event.Summary == "" {
		return untitledEvent
	}
	return event.Summary
}

func renderEventStart(event calendar.Event) string {
	if event.AllDay {
		return event.Start.Format(eventDateLayout) + " (tutto il giorno)"
	}
	return event.Start.Format(eventTimeLayout)
}

// renderEventList builds the Markdown listing of upcoming events: numbered
// summaries with start time, optional location and description, and the
// backend id of each event.
func renderEventList(events []calendar.Event) string {
	if len(events) == 0 {
		return "Nessun evento in programma."
	}

	var b strings.Builder
	b.WriteString("📅 *Eventi in programma:*\n\n")
	for i, event := range events {
		fmt.Fprintf(&b, "*%d. %s*\n", i+1, renderSummary(event))
		fmt.Fprintf(&b, "📆 %s\n", renderEventStart(event))
		if event.Location != "" {
			fmt.Fprintf(&b, "📍 %s\n", event.Location)
		}
		if event.Description != "" {
			fmt.Fprintf(&b, "📝 %s\n", truncate(event.Description, 50))
		}
		fmt.Fprintf(&b, "ID: `%s`\n\n", event.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderDraftPreview builds the confirmation text shown before an event is
// created.
func renderDraftPreview(draft calendar.EventDraft) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Evento:* %s\n", draft.Summary)
	fmt.Fprintf(&b, "*Inizio:* %s\n", draft.Start.Format(eventTimeLayout))
	fmt.Fprintf(&b, "*Fine:* %s\n", draft.End.Format(eventTimeLayout))
	if draft.Location != "" {
		fmt.Fprintf(&b, "*Luogo:* %s\n", draft.Location)
	}
	if draft.Description != "" {
		fmt.Fprintf(&b, "*Descrizione:* %s\n", draft.Description)
	}
	b.WriteString("\nConfermi la creazione dell'evento?")
	return b.String()
}

// renderReport builds the Markdown expense report. Without a category filter
// it includes the per-category breakdown in alphabetical order.
func renderReport(summary expense.Summary) string {
	periodText := reportPeriodText(summary.Period)
	categoryText := ""
	if summary.Category != "" {
		categoryText = fmt.Sprintf(" nella categoria '%s'", summary.Category)
	}

	if summary.Count == 0 {
		return fmt.Sprintf("Nessuna spesa %s%s.", periodText, categoryText)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Report spese %s%s*\n\n", periodText, categoryText)
	fmt.Fprintf(&b, "Totale: %s€\n", summary.Total.StringFixed(2))
	if summary.Category == "" {
		b.WriteString("\n*Dettaglio per categoria:*\n")
		categories := make([]string, 0, len(summary.ByCategory))
		for category := range summary.ByCategory {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Fprintf(&b, "- %s: %s€\n", category, summary.ByCategory[category].StringFixed(2))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func reportPeriodText(period expense.Period) string {
	switch period {
	case expense.PeriodDay:
		return "oggi"
	case expense.PeriodWeek:
		return "questa settimana"
	case expense.PeriodMonth:
		return "questo mese"
	case expense.PeriodYear:
		return "quest'anno"
	default:
		return "totali"
	}
}

// truncate shortens text to at most max runes, ending with "..." when cut.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-3]) + "..."
}
