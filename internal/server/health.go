package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cristianoliveira/proposal-tracker/internal/storage"
	"github.com/cristianoliveira/proposal-tracker/internal/version"
)

const readinessTimeout = 5 * time.Second

// HealthHandler serves the probes and the metrics endpoint.
type HealthHandler struct {
	pinger      storage.Pinger
	promHandler http.Handler
}

// NewHealthHandler creates the probe handler. A nil pinger makes readiness
// always succeed.
func NewHealthHandler(pinger storage.Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger, promHandler: promhttp.Handler()}
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Message   string `json:"message,omitempty"`
}

// Live answers 200 while the process runs.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newHealthResponse("ok", ""))
}

// Ready answers 200 when the repository is reachable and 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, newHealthResponse("fail", err.Error()))
			return
		}
	}
	writeJSON(w, http.StatusOK, newHealthResponse("ok", ""))
}

// Metrics serves the prometheus registry.
func (h *HealthHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

func newHealthResponse(status, message string) healthResponse {
	return healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   version.String(),
		Message:   message,
	}
}
