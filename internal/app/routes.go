package app

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// version is overridden at build time via -ldflags "-X .../internal/app.version=...".
var version = "dev"

type statusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {
	startedAt := deps.Clock.Now()

	r.HandleFunc("/api/status", func(w http.ResponseWriter, req *http.Request) {
		response := statusResponse{
			Status:  "ok",
			Version: version,
			Uptime:  deps.Clock.Now().Sub(startedAt).Round(time.Second).String(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Errorf("failed to encode status response: %v", err)
		}
	}).Methods("GET")
}
