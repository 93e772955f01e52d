package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spendario/spendario/pkg/calendar"
	"github.com/spendario/spendario/pkg/conversation"
	"github.com/spendario/spendario/pkg/expense"
)

const (
	flowAddExpense  = "add-expense"
	flowAddEvent    = "add-event"
	flowUpdateEvent = "update-event"
	flowDeleteEvent = "delete-event"
)

var eventNumberPattern = regexp.MustCompile(`^\d+$`)

// announce wraps a backend call with a wait placeholder that is removed once
// the call returns, whatever its outcome.
func announce[T any](messenger Messenger, chatID int64, text string, call func() (T, error)) (T, error) {
	messageID, sendErr := messenger.Send(chatID, text)
	if sendErr != nil {
		log.Warnf("failed to send wait placeholder: %v", sendErr)
	}
	result, err := call()
	if sendErr == nil {
		if deleteErr := messenger.Delete(chatID, messageID); deleteErr != nil {
			log.Warnf("failed to delete wait placeholder: %v", deleteErr)
		}
	}
	return result, err
}

func (b *Bot) addExpenseFlow() conversation.Flow {
	return conversation.Flow{
		Name: flowAddExpense,
		Begin: func(ctx context.Context, session *conversation.Session) (conversation.Outcome, error) {
			if _, err := b.messenger.Send(session.ChatID, "Inserisci l'importo della spesa:"); err != nil {
				return conversation.Done, err
			}
			return conversation.Next, nil
		},
		States: []conversation.StateHandler{
			b.expenseAmountState,
			b.expenseCategoryState,
			b.expenseDescriptionState,
		},
	}
}

func (b *Bot) expenseAmountState(ctx context.Context, session *conversation.Session, in conversation.Input) (conversation.Outcome, error) {
	if in.Text == "" {
		return conversation.Stay, nil
	}

	amount, err := expense.ParseAmount(in.Text)
	if err != nil {
		message := msgAmountNotANumber
		if errors.Is(err, expense.ErrAmountNotPositive) {
			message = msgAmountNotPositive
		}
		if _, err := b.messenger.Send(session.ChatID, message); err != nil {
			return conversation.Done, err
		}
		return conversation.Stay, nil
	}

	session.Scratch.Amount = amount
	session.Scratch.AmountSet = true
	if err := b.promptCategory(session); err != nil {
		return conversation.Done, err
	}
	return conversation.Next, nil
}

func (b *Bot) promptCategory(session *conversation.Session) error {
	messageID, err := b.messenger.SendOptions(session.ChatID, "Seleziona la categoria della spesa:", categoryKeyboard(b.expenses.Categories()))
	if err != nil {
		return err
	}
	session.Scratch.KeyboardMessageID = messageID
	return nil
}

func (b *Bot) expenseCategoryState(ctx context.Context, session *conversation.Session, in conversation.Input) (conversation.Outcome, error) {
	if !strings.HasPrefix(in.Choice, categoryPrefix) {
		// only the keyboard advances this state
		if err := b.promptCategory(session); err != nil {
			return conversation.Done, err
		}
		return conversation.Stay, nil
	}

	session.Scratch.Category = strings.TrimPrefix(in.Choice, categoryPrefix)
	prompt := fmt.Sprintf("Categoria selezionata: %s\n\nInserisci una descrizione per la spesa (o invia /skip per saltare):", session.Scratch.Category)
	if err := b.messenger.Edit(session.ChatID, session.Scratch.KeyboardMessageID, prompt); err != nil {
		return conversation.Done, err
	}
	return conversation.Next, nil
}

func (b *Bot) expenseDescriptionState(ctx context.Context, session *conversation.Session, in conversation.Input) (conversation.Outcome, error) {
	description := in.Text
	if in.Command == "skip" {
		description = ""
	} else if in.Text == "" {
		return conversation.Stay, nil
	}

	record, err := b.expenses.Add(ctx, session.Scratch.Amount, session.Scratch.Category, description)
	if err != nil {
		log.Error(err)
		if _, err := b.messenger.Send(session.ChatID, sheetsMessage(err, b.expenses.Categories(), "Errore nell'aggiunta della spesa.")); err != nil {
			return conversation.Done, err
		}
		return conversation.Done, nil
	}

	confirmation := fmt.Sprintf("Spesa di %s€ aggiunta nella categoria '%s'.", record.Amount.StringFixed(2), record.Category)
	if _, err := b.messenger.Send(session.ChatID, confirmation); err != nil {
		return conversation.Done, err
	}
	return conversation.Done, nil
}

func (b *Bot) addEventFlow() conversation.Flow {
	return conversation.Flow{
		Name: flowAddEvent,
		Begin: func(ctx context.Context, session *conversation.Session) (conversation.Outcome, error) {
			prompt := "Descrivi l'evento che vuoi aggiungere al calendario.\nEsempio: 'Riunione di lavoro domani alle 15:00 in ufficio'"
			if _, err := b.messenger.Send(session.ChatID, prompt); err != nil {
				return conversation.Done, err
			}
			return conversation.Next, nil
		},
		States: []conversation.StateHandler{
			b.eventDescriptionState,
			b.eventConfirmationState,
		},
	}
}

func (b *Bot) eventDescriptionState(ctx context.Context, session *conversation.Session, in conversation.Input) (conversation.Outcome, error) {
	if in.Text == "" {
		return conversation.Stay, nil
	}

	draft, err := announce(b.messenger, session.ChatID, waitProcessing, func() (calendar.EventDraft, error) {
		return b.extractor.ExtractEvent(ctx, in.Text)
	})
	if err != nil {
		log.Warnf("failed to extract event from %q: %v", in.Text, err)
		if _, err := b.messenger.Send(session.ChatID, retryExtraction(extractionMessage(err))); err != nil {
			return conversation.Done, err
		}
		return conversation.Stay, nil
	}

	session.Scratch.Draft = &draft
	messageID, err := b.messenger.SendOptions(session.ChatID, renderDraftPreview(draft), confirmKeyboard())
	if err != nil {
		return conversation.Done, err
	}
	session.Scratch.KeyboardMessageID = messageID
	return conversation.Next, nil
}

func (b *Bot) eventConfirmationState(ctx context.Context, session *conversation.Session, in conversation.Input) (conversation.Outcome, error) {
	switch in.Choice {
	case cancelChoice:
		if err := b.messenger.Edit(session.ChatID, session.Scratch.KeyboardMessageID, "Creazione evento annullata."); err != nil {
			return conversation.Done, err
		}
		return conversation.Done, nil

	case confirmChoice:
		created, err := b.calendar.Create(ctx, *session.Scratch.Draft)
		if err != nil {
			log.Error(err)
			message := "❌ " + calendarMessage(err, "Errore nella creazione dell'evento.")
			if err := b.messenger.Edit(session.ChatID, session.Scratch.KeyboardMessageID, message); err != nil {
				return conversation.Done, err
			}
			return conversation.Done, nil
		}

		confirmation := fmt.Sprintf("✅ Evento creato con successo!\n\n*%s*\n📆 %s", renderSummary(created), created.Start.Format(eventTimeLayout))
		if err := b.messenger.EditMarkdown(session.ChatID, session.Scratch.KeyboardMessageID, confirmation); err != nil {
			return conversation.Done, err
		}
		return conversation.Done, nil

	default:
		// the pending confirm keyboard is the only way forward
		return conversation.Stay, nil
	}
}

func (b *Bot) updateEventFlow() conversation.Flow {
	return conversation.Flow{
		Name: flowUpdateEvent,
		Begin: func(ctx context.Context, session *conversation.Session) (conversation.Outcome, error) {
			events, outcome, err := b.beginWithUpcoming(ctx, session)
			if outcome != conversation.Next || err != nil {
				return outcome, err
			}
			messageID, err := b.messenger.SendOptions(session.ChatID, "Seleziona l'evento da modificare:", eventKeyboard(events))
			if err != nil {
				return conversation.Done, err
			}
			session.Scratch.KeyboardMessageID = messageID
			return conversation.Next, nil
		},
		States: []conversation.StateHandler{
			b.updateSelectionState,
			b.updateChangesState,
		},
	}
}

// beginWithUpcoming fetches the upcoming events for a selection flow. It
// reports Done when there is nothing to select from or the listing fails.
func (b *Bot) beginWithUpcoming(ctx context.Context, session *conversation.Session) ([]calendar.Event, conversation.Outcome, error) {
	events, err := announce(b.messenger, session.ChatID, waitFetchingEvents, func() ([]calendar.Event, error) {
		return b.calendar.Upcoming(ctx, b.maxEvents)
	})
	if err != nil {
		log.Error(err)
		if _, err := b.messenger.Send(session.ChatID, "Errore: "+calendarMessage(err, "Errore nel recupero degli eventi.")); err != nil {
			return nil, conversation.Done, err
		}
		return nil, conversation.Done, nil
	}
	if len(events) == 0 {
		if _, err := b.messenger.Send(session.ChatID, msgNoEvents); err != nil {
			return nil, conversation.Done, err
		}
		return nil, conversation.Done, nil
	}
	session.Scratch.Events = events
	return events, conversation.Next, nil
}

func (b *Bot) updateSelectionState(ctx context.Context, session *conversation.Session, in conversation.Input) (conversation.Outcome, error) {
	switch {
	case in.Choice == cancelChoice:
		if err := b.messenger.Edit(session.ChatID, session.Scratch.KeyboardMessageID, "Modifica evento annullata."); err != nil {
			return conversation.Done, err
		}
		return conversation.Done, nil

	case strings.HasPrefix(in.Choice, eventPrefix):
		eventID := strings.TrimPrefix(in.Choice, eventPrefix)
		selected, ok := findEvent(session.Scratch.Events, eventID)
		if !ok {
			if err := b.messenger.Edit(session.ChatID, session.Scratch.KeyboardMessageID, msgEventNotFound); err != nil {
				return conversation.Done, err
			}
			return conversation.Done, nil
		}

		session.Scratch.EventID = eventID
		prompt := fmt.Sprintf("Hai selezionato: *%s* - %s\n\n"+
			"Descrivi le modifiche che vuoi apportare all'evento.\n"+
			"Esempio: 'Sposta l'evento a domani alle 16:00' o 'Cambia il titolo in Riunione importante'",
			renderSummary(selected), renderEventStart(selected))
		if err := b.messenger.EditMarkdown(session.ChatID, session.Scratch.KeyboardMessageID, prompt); err != nil {
			return conversation.Done, err
		}
		return conversation.Next, nil

	default:
		return conversation.Stay, nil
	}
}

func (b *Bot) updateChangesState(ctx context.Context, session *conversation.Session, in conversation.Input) (conversation.Outcome, error) {
	if in.Text == "" {
		return conversation.Stay, nil
	}

	update, err := announce(b.messenger, session.ChatID, waitProcessing, func() (calendar.EventUpdate, error) {
		return b.extractor.ExtractUpdate(ctx, in.Text, session.Scratch.EventID)
	})
	if err != nil {
		log.Warnf("failed to extract update from %q: %v", in.Text, err)
		if _, err := b.messenger.Send(session.ChatID, "Errore: "+extractionMessage(err)); err != nil {
			return conversation.Done, err
		}
		return conversation.Done, nil
	}

	updated, err := b.calendar.Update(ctx, update)
	if err != nil {
		log.Error(err)
		if _, err := b.messenger.Send(session.ChatID, "❌ "+calendarMessage(err, "Errore nell'aggiornamento dell'evento.")); err != nil {
			return conversation.Done, err
		}
		return conversation.Done, nil
	}

	confirmation := fmt.Sprintf("✅ Evento '%s' aggiornato con successo.", renderSummary(updated))
	if _, err := b.messenger.Send(session.ChatID, confirmation); err != nil {
		return conversation.Done, err
	}
	return conversation.Done, nil
}

func (b *Bot) deleteEventFlow() conversation.Flow {
	return conversation.Flow{
		Name: flowDeleteEvent,
		Begin: func(ctx context.Context, session *conversation.Session) (conversation.Outcome, error) {
			events, outcome, err := b.beginWithUpcoming(ctx, session)
			if outcome != conversation.Next || err != nil {
				return outcome, err
			}
			prompt := renderEventList(events) + "\n\nInvia il numero o il nome dell'evento che vuoi cancellare, o l'ID completo."
			if _, err := b.messenger.SendMarkdown(session.ChatID, prompt); err != nil {
				return conversation.Done, err
			}
			return conversation.Next, nil
		},
		States: []conversation.StateHandler{
			b.deleteSelectionState,
		},
	}
}

// deleteSelectionState resolves the target event from the user's reply.
// Resolution order: exact id among the listed events, 1-based number into the
// list, then the extractor against the list. Failures re-prompt in place.
func (b *Bot) deleteSelectionState(ctx context.Context, session *conversation.Session, in conversation.Input) (conversation.Outcome, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return conversation.Stay, nil
	}
	events := session.Scratch.Events

	if event, ok := findEvent(events, text); ok {
		return b.deleteAndReport(ctx, session, event.ID)
	}

	if eventNumberPattern.MatchString(text) {
		number, err := strconv.Atoi(text)
		if err != nil || number < 1 || number > len(events) {
			if _, err := b.messenger.Send(session.ChatID, retrySelection(msgBadEventNumber)); err != nil {
				return conversation.Done, err
			}
			return conversation.Stay, nil
		}
		return b.deleteAndReport(ctx, session, events[number-1].ID)
	}

	index, err := announce(b.messenger, session.ChatID, waitProcessing, func() (int, error) {
		return b.extractor.ResolveTarget(ctx, text, events)
	})
	if err != nil {
		log.Warnf("failed to resolve deletion target from %q: %v", text, err)
		if _, err := b.messenger.Send(session.ChatID, retrySelection(resolutionMessage(err))); err != nil {
			return conversation.Done, err
		}
		return conversation.Stay, nil
	}
	return b.deleteAndReport(ctx, session, events[index].ID)
}

func (b *Bot) deleteAndReport(ctx context.Context, session *conversation.Session, eventID string) (conversation.Outcome, error) {
	summary, err := announce(b.messenger, session.ChatID, waitDeleting, func() (string, error) {
		return b.calendar.Delete(ctx, eventID)
	})
	if err != nil {
		log.Error(err)
		if _, err := b.messenger.Send(session.ChatID, "❌ "+calendarMessage(err, "Errore nell'eliminazione dell'evento.")); err != nil {
			return conversation.Done, err
		}
		return conversation.Done, nil
	}

	confirmation := fmt.Sprintf("✅ Evento '%s' eliminato con successo.", summary)
	if _, err := b.messenger.Send(session.ChatID, confirmation); err != nil {
		return conversation.Done, err
	}
	return conversation.Done, nil
}

func findEvent(events []calendar.Event, id string) (calendar.Event, bool) {
	for _, event := range events {
		if event.ID == id {
			return event, true
		}
	}
	return calendar.Event{}, false
}
