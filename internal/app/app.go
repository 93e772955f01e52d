package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/spendario/spendario/internal/config"
	"github.com/spendario/spendario/pkg/bot"
)

const pollTimeoutSeconds = 30

// Application wires configuration, services, the Telegram bot, and the status
// server lifecycle.
type Application struct {
	cfg  config.Application
	deps *Dependencies
	srv  *http.Server
}

// NewApplication constructs the full application, ready to Run(). No network
// connection is made here.
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	deps, err := BuildDependencies(cfg)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	// Middleware chain
	SetupMiddleware(r)

	// Routes
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, deps: deps, srv: srv}, nil
}

// Run connects to Telegram, starts the status server, and blocks consuming
// updates until SIGINT or SIGTERM.
func (a *Application) Run() error {
	if a.cfg.Telegram.Token == "" {
		return errors.New("telegram bot token is not configured")
	}

	api, err := tgbotapi.NewBotAPI(a.cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	log.Infof("Authorized on Telegram as @%s", api.Self.UserName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = pollTimeoutSeconds
	updates := api.GetUpdatesChan(updateConfig)

	b := bot.New(
		bot.NewTelegramMessenger(api),
		a.deps.SessionStore,
		a.deps.ExpenseService,
		a.deps.CalendarService,
		a.deps.Extractor,
		a.cfg.Display.MaxEvents,
	)

	go func() {
		log.Infof("Starting status server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("status server stopped: %v", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Run(ctx, updates)
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	api.StopReceivingUpdates()
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down status server: %w", err)
	}
	return nil
}
