package core

import "context"

// TokenGenerator produce el token opaco de una cuenta nueva.
// Debe salir de una fuente criptográfica; nunca derivarse del email.
type TokenGenerator func() (string, error)

// AccountStore es el único dueño de la persistencia de cuentas.
// Ninguna otra capa cachea Account ni Token entre requests.
type AccountStore interface {
	Ping(ctx context.Context) error

	// FindByToken devuelve la cuenta cuyo token coincide exactamente,
	// o ErrNotFound. Sin matching parcial ni case-insensitive.
	FindByToken(ctx context.Context, token string) (*Account, error)

	// FindOrCreateByEmail devuelve la cuenta existente para ese email o crea
	// una nueva con un token recién generado. Atómica frente a llamadas
	// concurrentes con el mismo email: exactamente una cuenta termina
	// persistida y todas las llamadas observan el mismo Account.
	FindOrCreateByEmail(ctx context.Context, email string) (*Account, error)

	Close()
}
