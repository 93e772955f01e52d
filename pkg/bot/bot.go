package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
	"github.com/spendario/spendario/pkg/calendar"
	"github.com/spendario/spendario/pkg/conversation"
	"github.com/spendario/spendario/pkg/expense"
	"github.com/spendario/spendario/pkg/nlp"
	"github.com/spendario/spendario/pkg/user"
)

// Bot routes Telegram updates to the stateless commands and the four
// conversation flows. All user-facing text is Italian.
type Bot struct {
	messenger Messenger
	runner    *conversation.Runner
	expenses  expense.Service
	calendar  calendar.Service
	extractor nlp.Extractor
	maxEvents int
}

func New(
	messenger Messenger,
	store conversation.Store,
	expenses expense.Service,
	calendarService calendar.Service,
	extractor nlp.Extractor,
	maxEvents int,
) *Bot {
	b := &Bot{
		messenger: messenger,
		expenses:  expenses,
		calendar:  calendarService,
		extractor: extractor,
		maxEvents: maxEvents,
	}
	b.runner = conversation.NewRunner(store,
		b.addExpenseFlow(),
		b.addEventFlow(),
		b.updateEventFlow(),
		b.deleteEventFlow(),
	)
	return b
}

// Run consumes updates until the channel closes or the context is cancelled.
// Each update is handled on its own goroutine; the session store is the only
// state shared between them.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic while handling update %d: %v", update.UpdateID, r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleText(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || message.Chat == nil {
		return
	}
	sender := toUser(message.From)
	ctx = user.WithUser(ctx, sender)
	chatID := message.Chat.ID
	command := message.Command()
	log.Debugf("Handling command /%s from user %d", command, sender.Id)

	switch command {
	case "start":
		greeting := fmt.Sprintf("Ciao %s! Sono il tuo assistente per la gestione delle spese e del calendario.\nUsa /help per vedere i comandi disponibili.", sender.FirstName)
		b.send(chatID, greeting)
	case "help":
		b.sendMarkdown(chatID, helpText)
	case "spesa":
		b.startFlow(ctx, flowAddExpense, sender.Id, chatID)
	case "evento":
		b.startFlow(ctx, flowAddEvent, sender.Id, chatID)
	case "modifica_evento":
		b.startFlow(ctx, flowUpdateEvent, sender.Id, chatID)
	case "cancella_evento":
		b.startFlow(ctx, flowDeleteEvent, sender.Id, chatID)
	case "report", "report_giorno", "report_settimana", "report_mese", "report_anno":
		b.report(ctx, chatID, command, strings.TrimSpace(message.CommandArguments()))
	case "eventi":
		b.listEvents(ctx, chatID)
	case "skip":
		b.routeToFlow(ctx, sender.Id, chatID, conversation.Input{Command: "skip"})
	case "cancel":
		if b.runner.Cancel(ctx, sender.Id) {
			b.send(chatID, msgCancelled)
		}
	default:
		b.send(chatID, msgHint)
	}
}

func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || message.Chat == nil {
		return
	}
	sender := toUser(message.From)
	ctx = user.WithUser(ctx, sender)
	b.routeToFlow(ctx, sender.Id, message.Chat.ID, conversation.Input{Text: message.Text})
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if err := b.messenger.AnswerCallback(callback.ID); err != nil {
		log.Warn(err)
	}
	if callback.From == nil || callback.Message == nil || callback.Message.Chat == nil {
		return
	}
	sender := toUser(callback.From)
	ctx = user.WithUser(ctx, sender)

	// a press on a stale keyboard with no active flow is dropped silently
	if _, err := b.runner.Handle(ctx, sender.Id, conversation.Input{Choice: callback.Data}); err != nil {
		log.Error(err)
	}
}

// report runs the stateless report commands; any active flow is untouched.
func (b *Bot) report(ctx context.Context, chatID int64, command string, category string) {
	summary, err := b.expenses.Report(ctx, reportPeriod(command), category)
	if err != nil {
		log.Error(err)
		b.send(chatID, sheetsMessage(err, b.expenses.Categories(), "Errore nella generazione del report."))
		return
	}
	b.sendMarkdown(chatID, renderReport(summary))
}

func (b *Bot) listEvents(ctx context.Context, chatID int64) {
	events, err := announce(b.messenger, chatID, waitFetchingEvents, func() ([]calendar.Event, error) {
		return b.calendar.Upcoming(ctx, b.maxEvents)
	})
	if err != nil {
		log.Error(err)
		b.send(chatID, "Errore: "+calendarMessage(err, "Errore nel recupero degli eventi."))
		return
	}
	b.sendMarkdown(chatID, renderEventList(events))
}

func (b *Bot) startFlow(ctx context.Context, flowName string, userID int64, chatID int64) {
	if err := b.runner.StartFlow(ctx, flowName, userID, chatID); err != nil {
		log.Error(err)
	}
}

func (b *Bot) routeToFlow(ctx context.Context, userID int64, chatID int64, in conversation.Input) {
	handled, err := b.runner.Handle(ctx, userID, in)
	if err != nil {
		log.Error(err)
		return
	}
	if !handled {
		b.send(chatID, msgHint)
	}
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.messenger.Send(chatID, text); err != nil {
		log.Error(err)
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	if _, err := b.messenger.SendMarkdown(chatID, text); err != nil {
		log.Error(err)
	}
}

func reportPeriod(command string) expense.Period {
	switch command {
	case "report_giorno":
		return expense.PeriodDay
	case "report_settimana":
		return expense.PeriodWeek
	case "report_mese":
		return expense.PeriodMonth
	case "report_anno":
		return expense.PeriodYear
	default:
		return expense.PeriodMonth
	}
}

func toUser(from *tgbotapi.User) user.User {
	return user.User{
		Id:        from.ID,
		Username:  from.UserName,
		FirstName: from.FirstName,
	}
}
