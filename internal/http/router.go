// Package http contiene el router, métricas y servidor HTTP.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	accountsctrl "github.com/dropDatabas3/mailkey/internal/http/controllers/accounts"
	healthctrl "github.com/dropDatabas3/mailkey/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/mailkey/internal/http/errors"
	mw "github.com/dropDatabas3/mailkey/internal/http/middlewares"
)

// RouterDeps contiene las dependencias del router.
type RouterDeps struct {
	Accounts *accountsctrl.Controller
	Health   *healthctrl.Controller

	// MetricsHandler expone /metrics. Nil => la ruta no se registra.
	MetricsHandler http.Handler
}

// NewRouter arma el router con la cadena de middlewares estándar.
//
// Orden de la cadena (de afuera hacia adentro):
// recover -> request-id -> metrics -> logging -> security headers -> no-store -> handler
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRecover())
	r.Use(mw.WithRequestID())
	r.Use(WithMetrics)
	r.Use(mw.WithLogging())
	r.Use(mw.WithSecurityHeaders())

	// Solo servimos GET; cualquier otro método cae acá.
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Allow", http.MethodGet)
		httperrors.WriteError(w, req, httperrors.ErrMethodNotAllowed)
	})

	// Rutas de dominio: respuestas con email/token jamás se cachean.
	r.Group(func(g chi.Router) {
		g.Use(mw.WithNoStore())
		g.Get("/auth/{token}", deps.Accounts.Auth)
		g.Get("/register/{email}", deps.Accounts.Register)
	})

	// Operacionales
	if deps.Health != nil {
		r.Get("/healthz", deps.Health.Healthz)
		r.Get("/readyz", deps.Health.Readyz)
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	return r
}
