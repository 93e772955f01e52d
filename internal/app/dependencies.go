package app

import (
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
	"github.com/spendario/spendario/internal/config"
	"github.com/spendario/spendario/internal/event_bus"
	"github.com/spendario/spendario/internal/utils"
	"github.com/spendario/spendario/pkg/calendar"
	"github.com/spendario/spendario/pkg/conversation"
	"github.com/spendario/spendario/pkg/expense"
	"github.com/spendario/spendario/pkg/google"
	"github.com/spendario/spendario/pkg/nlp"
)

// Dependencies holds all services of the application. Everything here is
// constructed without network access; the Google and OpenAI clients connect
// lazily on first use.
type Dependencies struct {
	Bus *event_bus.EventBus

	GoogleAuth *google.Auth

	Ledger         expense.Ledger
	ExpenseService expense.Service

	CalendarProvider calendar.Provider
	CalendarService  calendar.Service

	Extractor nlp.Extractor

	SessionStore conversation.Store

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services.
func BuildDependencies(cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	loc, err := time.LoadLocation(cfg.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", cfg.Display.Timezone, err)
	}

	deps.Clock = &utils.SystemClock{}
	deps.Bus = event_bus.NewEventBus()
	RegisterAuditSubscribers(deps.Bus)

	deps.GoogleAuth = google.NewAuth(cfg.Google.CredentialsFile)

	deps.Ledger = google.NewSheetsLedger(deps.GoogleAuth, cfg.Sheets.SpreadsheetName, cfg.Sheets.WorksheetName, loc)
	deps.ExpenseService = expense.NewService(deps.Ledger, cfg.Expense.Categories, deps.Bus, deps.Clock)

	deps.CalendarProvider = google.NewCalendar(deps.GoogleAuth, cfg.Google.CalendarId, loc)
	deps.CalendarService = calendar.NewService(deps.CalendarProvider, deps.Bus, deps.Clock)

	var chatClient nlp.ChatClient
	if cfg.OpenAI.ApiKey != "" {
		chatClient = openai.NewClient(cfg.OpenAI.ApiKey)
	} else {
		log.Warn("OpenAI API key is not configured, natural language requests will be rejected")
	}
	deps.Extractor = nlp.NewExtractor(chatClient, cfg.OpenAI.Model, loc, deps.Clock)

	deps.SessionStore = conversation.NewInMemoryStore()

	return deps, nil
}
