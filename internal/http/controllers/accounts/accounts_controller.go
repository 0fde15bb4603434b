// Package accounts contiene el controller de registro y autenticación.
package accounts

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/mailkey/internal/http/errors"
	svc "github.com/dropDatabas3/mailkey/internal/http/services/accounts"
	"github.com/dropDatabas3/mailkey/internal/observability/logger"
	"github.com/dropDatabas3/mailkey/internal/store/core"
)

// Controller maneja GET /register/{email} y GET /auth/{token}.
type Controller struct {
	service svc.Service

	// hooks de métricas, inyectados desde el router para evitar ciclo de imports
	recordRegistration func()
	recordMailSend     func(result string)
}

// New crea el controller de cuentas.
func New(service svc.Service, opts ...Option) *Controller {
	c := &Controller{
		service:            service,
		recordRegistration: func() {},
		recordMailSend:     func(string) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configura el controller.
type Option func(*Controller)

// WithRecorders conecta los contadores de dominio.
func WithRecorders(registration func(), mailSend func(result string)) Option {
	return func(c *Controller) {
		if registration != nil {
			c.recordRegistration = registration
		}
		if mailSend != nil {
			c.recordMailSend = mailSend
		}
	}
}

// Register maneja GET /register/{email}
//
// Respuesta 200: el email de la cuenta, en texto plano. El token NUNCA viaja
// en la respuesta HTTP: solo va por mail.
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Accounts.Register"))

	rawEmail := chi.URLParam(r, "email")

	acct, err := c.service.Register(ctx, rawEmail)
	switch {
	case err == nil:
		c.recordRegistration()
		c.recordMailSend("ok")
		writeText(w, http.StatusOK, acct.Email)

	case errors.Is(err, svc.ErrEmptyEmail):
		httperrors.WriteError(w, r, httperrors.ErrBadRequest.WithDetail("email is required"))

	case errors.Is(err, svc.ErrNotifyFailed):
		// La cuenta quedó creada; el caller debe enterarse de que el mail NO salió.
		c.recordRegistration()
		c.recordMailSend("failed")
		httperrors.WriteError(w, r, httperrors.ErrNotifyFailed.WithCause(err))

	case errors.Is(err, core.ErrUnavailable):
		log.Error("register failed, storage unavailable", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrServiceUnavailable.WithCause(err))

	default:
		log.Error("register failed", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrInternalServerError.WithCause(err))
	}
}

// Auth maneja GET /auth/{token}
//
// Respuesta 200: el email de la cuenta, en texto plano.
// Token desconocido (o vacío): 401 con cuerpo "bad token".
func (c *Controller) Auth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Accounts.Auth"))

	tok := chi.URLParam(r, "token")

	acct, err := c.service.Auth(ctx, tok)
	switch {
	case err == nil:
		writeText(w, http.StatusOK, acct.Email)

	case errors.Is(err, svc.ErrUnknownToken), errors.Is(err, svc.ErrEmptyToken):
		writeText(w, http.StatusUnauthorized, "bad token")

	case errors.Is(err, core.ErrUnavailable):
		log.Error("auth failed, storage unavailable", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrServiceUnavailable.WithCause(err))

	default:
		log.Error("auth failed", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrInternalServerError.WithCause(err))
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
