// Package memory implementa core.AccountStore en memoria.
// Se usa en tests y en modo dev (storage.driver: memory); el serializado
// de FindOrCreateByEmail lo da el mutex en lugar de la constraint SQL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/mailkey/internal/store/core"
	"github.com/google/uuid"
)

type Store struct {
	mu      sync.Mutex
	byEmail map[string]*core.Account
	byToken map[string]*core.Account
	gen     core.TokenGenerator
	now     func() time.Time
}

func New(gen core.TokenGenerator) *Store {
	return &Store{
		byEmail: make(map[string]*core.Account),
		byToken: make(map[string]*core.Account),
		gen:     gen,
		now:     time.Now,
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() {}

func (s *Store) FindByToken(ctx context.Context, token string) (*core.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byToken[token]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) FindOrCreateByEmail(ctx context.Context, email string) (*core.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.byEmail[email]; ok {
		cp := *a
		return &cp, nil
	}

	tok, err := s.gen()
	if err != nil {
		return nil, err
	}
	for {
		if _, taken := s.byToken[tok]; !taken {
			break
		}
		// colisión de token: regenerar
		if tok, err = s.gen(); err != nil {
			return nil, err
		}
	}

	a := &core.Account{
		ID:        uuid.NewString(),
		Email:     email,
		Token:     tok,
		CreatedAt: s.now().UTC(),
	}
	s.byEmail[email] = a
	s.byToken[tok] = a

	cp := *a
	return &cp, nil
}

// Len devuelve la cantidad de cuentas persistidas (para tests).
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byEmail)
}
