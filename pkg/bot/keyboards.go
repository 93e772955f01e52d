package bot

import (
	"fmt"

	"github.com/spendario/spendario/pkg/calendar"
)

const (
	categoryPrefix = "cat_"
	eventPrefix    = "event_"
	confirmChoice  = "event_confirm"
	cancelChoice   = "event_cancel"
)

// categoryKeyboard lays the configured categories out three per row.
func categoryKeyboard(categories []string) [][]Button {
	var rows [][]Button
	var row []Button
	for _, category := range categories {
		row = append(row, Button{Label: category, Data: categoryPrefix + category})
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func confirmKeyboard() [][]Button {
	return [][]Button{{
		{Label: "✅ Conferma", Data: confirmChoice},
		{Label: "❌ Annulla", Data: cancelChoice},
	}}
}

// eventKeyboard lists one event per row, labelled like the numbered event
// list, with a final cancel row.
func eventKeyboard(events []calendar.Event) [][]Button {
	rows := make([][]Button, 0, len(events)+1)
	for i, event := range events {
		label := fmt.Sprintf("%d. %s - %s", i+1, renderSummary(event), renderEventStart(event))
		rows = append(rows, []Button{{Label: label, Data: eventPrefix + event.ID}})
	}
	rows = append(rows, []Button{{Label: "❌ Annulla", Data: cancelChoice}})
	return rows
}
