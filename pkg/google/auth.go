package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

var ErrNoCredentials = errors.New("Google credentials are not available")

var scopes = []string{
	gcal.CalendarScope,
	gcal.CalendarEventsScope,
	sheets.SpreadsheetsScope,
	drive.DriveScope,
}

// Auth builds the authenticated HTTP client for the service account whose
// credentials JSON lives at credentialsFile. The client is created on first
// use and kept for the process lifetime.
type Auth struct {
	credentialsFile string

	mu     sync.Mutex
	client *http.Client
}

func NewAuth(credentialsFile string) *Auth {
	return &Auth{credentialsFile: credentialsFile}
}

func (a *Auth) Client(ctx context.Context) (*http.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	data, err := os.ReadFile(a.credentialsFile)
	if err != nil {
		log.Warnf("Google credentials file not readable at %s: %v", a.credentialsFile, err)
		return nil, fmt.Errorf("%w: %v", ErrNoCredentials, err)
	}

	conf, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		log.Errorf("Failed to parse Google credentials: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrNoCredentials, err)
	}

	// The client outlives any single request, so its token source must not
	// be bound to the request context.
	a.client = conf.Client(context.Background())
	return a.client, nil
}
