// Package accounts contiene el service de registro y autenticación por token.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/mailkey/internal/email"
	"github.com/dropDatabas3/mailkey/internal/observability/logger"
	"github.com/dropDatabas3/mailkey/internal/store/core"
)

// Service define las operaciones de cuentas.
type Service interface {
	// Register resuelve (o crea) la cuenta para el email y dispara el mail
	// de verificación. Si el mail falla, la cuenta YA quedó persistida y el
	// error devuelto es ErrNotifyFailed (con la cuenta no-nil).
	Register(ctx context.Context, rawEmail string) (*core.Account, error)

	// Auth resuelve un token opaco a su cuenta. Token desconocido => ErrUnknownToken.
	Auth(ctx context.Context, token string) (*core.Account, error)
}

// Sentinel errors
var (
	ErrEmptyEmail   = errors.New("empty email")
	ErrEmptyToken   = errors.New("empty token")
	ErrUnknownToken = errors.New("unknown token")
	// ErrNotifyFailed: la cuenta existe pero el mail de verificación no salió.
	ErrNotifyFailed = errors.New("account persisted, verification mail failed")
)

// Deps contiene las dependencias inyectables del service.
type Deps struct {
	Store    core.AccountStore
	Notifier *email.Notifier
	// OpTimeout acota cada operación contra el store. Cero => sin límite extra.
	OpTimeout time.Duration
}

type service struct {
	deps Deps
}

// New crea el service de cuentas.
func New(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.deps.OpTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.deps.OpTimeout)
}

func (s *service) Register(ctx context.Context, rawEmail string) (*core.Account, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("accounts"),
		logger.Op("Register"),
	)

	// Validación mínima: no-vacío. El email NO se normaliza: la clave de la
	// cuenta es el string literal que llegó (Foo@Bar.com != foo@bar.com).
	if strings.TrimSpace(rawEmail) == "" {
		return nil, ErrEmptyEmail
	}

	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	acct, err := s.deps.Store.FindOrCreateByEmail(opCtx, rawEmail)
	if err != nil {
		log.Error("find-or-create failed", logger.Email(rawEmail), logger.Err(err))
		return nil, fmt.Errorf("accounts: find or create: %w", err)
	}

	// El envío usa el ctx original (no el de storage): el timeout de SMTP
	// lo maneja el propio dialer.
	if err := s.deps.Notifier.SendVerification(ctx, acct); err != nil {
		// La cuenta quedó creada; eso NO se deshace ni se oculta.
		log.Warn("verification mail failed",
			logger.AccountID(acct.ID),
			logger.Err(err),
		)
		return acct, fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	log.Info("registration resolved", logger.AccountID(acct.ID))
	return acct, nil
}

func (s *service) Auth(ctx context.Context, token string) (*core.Account, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("accounts"),
		logger.Op("Auth"),
	)

	if token == "" {
		return nil, ErrEmptyToken
	}

	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	acct, err := s.deps.Store.FindByToken(opCtx, token)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Nivel debug: tokens inválidos son tráfico esperado, no incidentes.
			log.Debug("token not found")
			return nil, ErrUnknownToken
		}
		log.Error("token lookup failed", logger.Err(err))
		return nil, fmt.Errorf("accounts: find by token: %w", err)
	}

	return acct, nil
}
