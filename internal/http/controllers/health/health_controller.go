// Package health contiene el controller para health checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dropDatabas3/mailkey/internal/observability/logger"
)

// Controller maneja /healthz y /readyz.
type Controller struct {
	// ping verifica la dependencia de storage
	ping func(ctx context.Context) error
	// timeout acota el ping de readiness
	timeout time.Duration
}

// New crea el controller de health checks.
func New(ping func(ctx context.Context) error, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Controller{ping: ping, timeout: timeout}
}

type response struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail,omitempty"`
}

// Healthz maneja GET /healthz: liveness, siempre 200 si el proceso responde.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, response{Status: "ok", Timestamp: time.Now().UTC()})
}

// Readyz maneja GET /readyz: readiness, verifica el storage.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	if c.ping != nil {
		if err := c.ping(ctx); err != nil {
			logger.From(r.Context()).Warn("readiness check failed",
				logger.Component("health"),
				logger.Err(err),
			)
			writeJSON(w, http.StatusServiceUnavailable, response{
				Status:    "unavailable",
				Timestamp: time.Now().UTC(),
				Detail:    "storage unreachable",
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, response{Status: "ready", Timestamp: time.Now().UTC()})
}

func writeJSON(w http.ResponseWriter, status int, v response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
