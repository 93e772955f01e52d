package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendario/spendario/pkg/calendar"
	"github.com/spendario/spendario/pkg/google"
	"github.com/spendario/spendario/pkg/nlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackendBotTest = errors.New("backend unavailable")

func strPtr(s string) *string {
	return &s
}

func TestAddExpenseFlow(t *testing.T) {
	t.Run("should record an expense through amount, category and description", func(t *testing.T) {
		// given
		f := setupBotTest(t)

		// when
		f.command("/spesa")
		f.text("12,50")
		f.press("cat_Trasporti")
		f.text("benzina")

		// then
		texts := f.messenger.Texts()
		require.Len(t, texts, 3)
		assert.Equal(t, "Inserisci l'importo della spesa:", texts[0])
		assert.Equal(t, "Seleziona la categoria della spesa:", texts[1])
		assert.Equal(t, "Spesa di 12.50€ aggiunta nella categoria 'Trasporti'.", texts[2])

		keyboard := f.messenger.Sent()[1]
		require.Len(t, keyboard.Rows, 2)
		require.Len(t, keyboard.Rows[0], 3)
		assert.Equal(t, "cat_Trasporti", keyboard.Rows[0][1].Data)
		assert.Equal(t, "Svago", keyboard.Rows[1][0].Label)

		edited := f.messenger.Edited()
		require.Len(t, edited, 1)
		assert.Equal(t, keyboard.MessageID, edited[0].MessageID)
		assert.Equal(t, "Categoria selezionata: Trasporti\n\nInserisci una descrizione per la spesa (o invia /skip per saltare):", edited[0].Text)

		records, err := f.ledger.All(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, decimal.RequireFromString("12.50").Equal(records[0].Amount))
		assert.Equal(t, "Trasporti", records[0].Category)
		assert.Equal(t, "benzina", records[0].Description)
		assert.True(t, records[0].Date.Equal(f.clock.Now()))

		assert.False(t, f.hasSession())
	})

	t.Run("should accept /skip as an empty description", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.command("/spesa")
		f.text("8")
		f.press("cat_Casa")

		// when
		f.command("/skip")

		// then
		last, ok := f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, "Spesa di 8.00€ aggiunta nella categoria 'Casa'.", last.Text)

		records, err := f.ledger.All(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "", records[0].Description)
		assert.False(t, f.hasSession())
	})

	t.Run("should re-prompt until the amount is a number", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.command("/spesa")

		// when
		f.text("dodici euro")

		// then
		last, ok := f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, msgAmountNotANumber, last.Text)
		assert.True(t, f.hasSession())

		// and a valid amount still moves the flow forward
		f.text("12.50")
		last, ok = f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, "Seleziona la categoria della spesa:", last.Text)
	})

	t.Run("should reject a non-positive amount", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.command("/spesa")

		// when
		f.text("0")
		f.text("-5")

		// then
		texts := f.messenger.Texts()
		require.Len(t, texts, 3)
		assert.Equal(t, msgAmountNotPositive, texts[1])
		assert.Equal(t, msgAmountNotPositive, texts[2])
		assert.True(t, f.hasSession())
	})

	t.Run("should re-send the category keyboard on a typed category", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.command("/spesa")
		f.text("10")

		// when
		f.text("Trasporti")

		// then
		texts := f.messenger.Texts()
		require.Len(t, texts, 3)
		assert.Equal(t, "Seleziona la categoria della spesa:", texts[2])

		// and the fresh keyboard still works
		f.press("cat_Trasporti")
		edited := f.messenger.Edited()
		require.Len(t, edited, 1)
		assert.Equal(t, f.messenger.Sent()[2].MessageID, edited[0].MessageID)
	})

	t.Run("should surface a ledger failure and end the flow", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.ledger.SetAppendError(errBackendBotTest)
		f.command("/spesa")
		f.text("10")
		f.press("cat_Casa")

		// when
		f.text("bolletta")

		// then
		last, ok := f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, "Errore nell'aggiunta della spesa.", last.Text)
		assert.False(t, f.hasSession())
	})

	t.Run("should report missing Google credentials explicitly", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.ledger.SetAppendError(google.ErrNoCredentials)
		f.command("/spesa")
		f.text("10")
		f.press("cat_Casa")

		// when
		f.command("/skip")

		// then
		last, ok := f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, msgSheetsUnavailable, last.Text)
	})

	t.Run("should leave no trace when cancelled after the amount", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.command("/spesa")
		f.text("25")

		// when
		f.command("/cancel")

		// then
		assert.False(t, f.hasSession())
		records, err := f.ledger.All(context.Background())
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestAddEventFlow(t *testing.T) {
	draft := calendar.EventDraft{
		Summary:  "Riunione di lavoro",
		Start:    time.Date(2025, 3, 13, 15, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 3, 13, 16, 0, 0, 0, time.UTC),
		Location: "Ufficio",
	}

	t.Run("should create the event after an explicit confirmation", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.extractor.SetDraft(draft)
		f.command("/evento")
		f.text("Riunione di lavoro domani alle 15:00 in ufficio")

		// when
		f.press(confirmChoice)

		// then
		texts := f.messenger.Texts()
		require.Len(t, texts, 3)
		assert.Equal(t, "Descrivi l'evento che vuoi aggiungere al calendario.\nEsempio: 'Riunione di lavoro domani alle 15:00 in ufficio'", texts[0])
		assert.Equal(t, waitProcessing, texts[1])
		assert.Equal(t, "*Evento:* Riunione di lavoro\n"+
			"*Inizio:* 13/03/2025 15:00\n"+
			"*Fine:* 13/03/2025 16:00\n"+
			"*Luogo:* Ufficio\n"+
			"\nConfermi la creazione dell'evento?", texts[2])

		// the wait placeholder is removed once extraction finishes
		deleted := f.messenger.Deleted()
		require.Len(t, deleted, 1)
		assert.Equal(t, f.messenger.Sent()[1].MessageID, deleted[0].MessageID)

		preview := f.messenger.Sent()[2]
		require.Len(t, preview.Rows, 1)
		require.Len(t, preview.Rows[0], 2)
		assert.Equal(t, confirmChoice, preview.Rows[0][0].Data)
		assert.Equal(t, cancelChoice, preview.Rows[0][1].Data)

		edited, ok := f.messenger.LastEdited()
		require.True(t, ok)
		assert.Equal(t, preview.MessageID, edited.MessageID)
		assert.True(t, edited.Markdown)
		assert.Equal(t, "✅ Evento creato con successo!\n\n*Riunione di lavoro*\n📆 13/03/2025 15:00", edited.Text)

		assert.Equal(t, 1, f.provider.Count())
		assert.False(t, f.hasSession())
	})

	t.Run("should abort on the cancel button", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.extractor.SetDraft(draft)
		f.command("/evento")
		f.text("Riunione di lavoro domani alle 15:00")

		// when
		f.press(cancelChoice)

		// then
		edited, ok := f.messenger.LastEdited()
		require.True(t, ok)
		assert.Equal(t, "Creazione evento annullata.", edited.Text)
		assert.Equal(t, 0, f.provider.Count())
		assert.False(t, f.hasSession())
	})

	t.Run("should re-prompt when extraction fails and accept a retry", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.extractor.SetExtractEventError(nlp.ErrNoStart)
		f.command("/evento")

		// when
		f.text("una riunione")

		// then
		last, ok := f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, "Errore: Non è stato possibile identificare la data e l'ora dell'evento.\n\n"+
			"Riprova con una descrizione più chiara o usa /cancel per annullare.", last.Text)
		assert.True(t, f.hasSession())

		// and a clearer description reaches the confirmation step
		f.extractor.SetExtractEventError(nil)
		f.extractor.SetDraft(draft)
		f.text("Riunione di lavoro domani alle 15:00")
		last, ok = f.messenger.LastSent()
		require.True(t, ok)
		assert.Contains(t, last.Text, "Confermi la creazione dell'evento?")
		assert.Equal(t, 2, f.extractor.EventCalls())
	})

	t.Run("should surface a creation failure", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.extractor.SetDraft(draft)
		f.provider.SetInsertError(errBackendBotTest)
		f.command("/evento")
		f.text("Riunione di lavoro domani alle 15:00")

		// when
		f.press(confirmChoice)

		// then
		edited, ok := f.messenger.LastEdited()
		require.True(t, ok)
		assert.Equal(t, "❌ Errore nella creazione dell'evento.", edited.Text)
		assert.Equal(t, 0, f.provider.Count())
		assert.False(t, f.hasSession())
	})
}

func TestUpdateEventFlow(t *testing.T) {
	t.Run("should apply extracted changes to the selected event", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.provider.SetEvents(upcomingTestEvents())
		f.command("/modifica_evento")

		keyboard := f.messenger.Sent()[1]
		assert.Equal(t, "Seleziona l'evento da modificare:", keyboard.Text)
		require.Len(t, keyboard.Rows, 3)
		assert.Equal(t, "1. Riunione - 13/03/2025 15:00", keyboard.Rows[0][0].Label)
		assert.Equal(t, "event_ev2", keyboard.Rows[1][0].Data)
		assert.Equal(t, "❌ Annulla", keyboard.Rows[2][0].Label)
		assert.Equal(t, cancelChoice, keyboard.Rows[2][0].Data)

		// when
		f.press("event_ev2")
		f.extractor.SetUpdate(calendar.EventUpdate{Summary: strPtr("Cena di lavoro")})
		f.text("cambia il titolo in Cena di lavoro")

		// then
		edited := f.messenger.Edited()
		require.Len(t, edited, 1)
		assert.Equal(t, keyboard.MessageID, edited[0].MessageID)
		assert.Equal(t, "Hai selezionato: *Cena* - 14/03/2025 20:00\n\n"+
			"Descrivi le modifiche che vuoi apportare all'evento.\n"+
			"Esempio: 'Sposta l'evento a domani alle 16:00' o 'Cambia il titolo in Riunione importante'", edited[0].Text)

		last, ok := f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, "✅ Evento 'Cena di lavoro' aggiornato con successo.", last.Text)

		stored, ok := f.provider.Stored("ev2")
		require.True(t, ok)
		assert.Equal(t, "Cena di lavoro", stored.Summary)
		assert.Equal(t, 1, f.extractor.UpdateCalls())
		assert.False(t, f.hasSession())
	})

	t.Run("should end immediately when no events are upcoming", func(t *testing.T) {
		// given
		f := setupBotTest(t)

		// when
		f.command("/modifica_evento")

		// then
		last, ok := f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, msgNoEvents, last.Text)
		assert.False(t, f.hasSession())
	})

	t.Run("should abort on the cancel button", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.provider.SetEvents(upcomingTestEvents())
		f.command("/modifica_evento")

		// when
		f.press(cancelChoice)

		// then
		edited, ok := f.messenger.LastEdited()
		require.True(t, ok)
		assert.Equal(t, "Modifica evento annullata.", edited.Text)
		assert.False(t, f.hasSession())
	})

	t.Run("should end the flow when no change can be extracted", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.provider.SetEvents(upcomingTestEvents())
		f.extractor.SetExtractUpdateError(nlp.ErrNothingToChange)
		f.command("/modifica_evento")
		f.press("event_ev1")

		// when
		f.text("boh")

		// then
		last, ok := f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, "Errore: "+msgNothingToChange, last.Text)
		assert.False(t, f.hasSession())
	})

	t.Run("should drop a selection that no longer exists", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.provider.SetEvents(upcomingTestEvents())
		f.command("/modifica_evento")

		// when
		f.press("event_ghost")

		// then
		edited, ok := f.messenger.LastEdited()
		require.True(t, ok)
		assert.Equal(t, msgEventNotFound, edited.Text)
		assert.False(t, f.hasSession())
	})
}

func TestDeleteEventFlow(t *testing.T) {
	t.Run("should delete by list number without calling the resolver", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.provider.SetEvents(upcomingTestEvents())
		f.command("/cancella_evento")

		listing := f.messenger.Sent()[1]
		assert.True(t, listing.Markdown)
		assert.Contains(t, listing.Text, "*2. Cena*")
		assert.Contains(t, listing.Text, "Invia il numero o il nome dell'evento che vuoi cancellare, o l'ID completo.")

		// when
		f.text("2")

		// then
		last, ok := f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, "✅ Evento 'Cena' eliminato con successo.", last.Text)
		assert.Equal(t, 1, f.provider.Count())
		_, ok = f.provider.Stored("ev1")
		assert.True(t, ok)
		assert.Equal(t, 0, f.extractor.TargetCalls())
		assert.False(t, f.hasSession())
	})

	t.Run("should delete by exact event id", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.provider.SetEvents(upcomingTestEvents())
		f.command("/cancella_evento")

		// when
		f.text("ev1")

		// then
		last, ok := f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, "✅ Evento 'Riunione' eliminato con successo.", last.Text)
		assert.Equal(t, 0, f.extractor.TargetCalls())
	})

	t.Run("should re-prompt on an out-of-range number", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.provider.SetEvents(upcomingTestEvents())
		f.command("/cancella_evento")

		// when
		f.text("5")

		// then
		last, ok := f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, "Errore: Numero evento non valido.\n\nRiprova o invia /cancel per annullare.", last.Text)
		assert.Equal(t, 0, f.extractor.TargetCalls())
		assert.True(t, f.hasSession())

		// and a number inside the list still works
		f.text("2")
		last, ok = f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, "✅ Evento 'Cena' eliminato con successo.", last.Text)
	})

	t.Run("should resolve a textual reference through the extractor", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.provider.SetEvents(upcomingTestEvents())
		f.extractor.SetTarget(1)
		f.command("/cancella_evento")

		// when
		f.text("la cena di venerdì")

		// then
		last, ok := f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, "✅ Evento 'Cena' eliminato con successo.", last.Text)
		assert.Equal(t, 1, f.extractor.TargetCalls())
		_, ok = f.provider.Stored("ev2")
		assert.False(t, ok)
	})

	t.Run("should re-prompt when the resolver finds no match", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.provider.SetEvents(upcomingTestEvents())
		f.extractor.SetResolveTargetError(nlp.ErrTargetNotFound)
		f.command("/cancella_evento")

		// when
		f.text("qualcosa")

		// then
		last, ok := f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, "Errore: "+msgTargetNotFound+"\n\nRiprova o invia /cancel per annullare.", last.Text)
		assert.Equal(t, 2, f.provider.Count())
		assert.True(t, f.hasSession())
	})

	t.Run("should surface a backend failure during deletion", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.provider.SetEvents(upcomingTestEvents())
		f.provider.SetDeleteError(errBackendBotTest)
		f.command("/cancella_evento")

		// when
		f.text("1")

		// then
		last, ok := f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, "❌ Errore nell'eliminazione dell'evento.", last.Text)
		assert.False(t, f.hasSession())
	})

	t.Run("should abort on /cancel during selection", func(t *testing.T) {
		// given
		f := setupBotTest(t)
		f.provider.SetEvents(upcomingTestEvents())
		f.command("/cancella_evento")

		// when
		f.command("/cancel")

		// then
		last, ok := f.messenger.LastSent()
		require.True(t, ok)
		assert.Equal(t, msgCancelled, last.Text)
		assert.Equal(t, 2, f.provider.Count())
		assert.False(t, f.hasSession())
	})
}
