package pg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dropDatabas3/mailkey/internal/observability/logger"
	"github.com/dropDatabas3/mailkey/internal/store/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxTokenAttempts limita los reintentos por colisión de token dentro de un
// mismo FindOrCreateByEmail. Con 256 bits de entropía nunca debería pasar de 1.
const maxTokenAttempts = 3

// Store implementa core.AccountStore sobre Postgres.
// Cada operación toma una conexión del pool y la devuelve al salir,
// también en los caminos de error (pgxpool se encarga de eso).
type Store struct {
	pool *pgxpool.Pool
	gen  core.TokenGenerator
}

// Options es el tuning opcional del pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

func New(ctx context.Context, dsn string, gen core.TokenGenerator, opts Options) (*Store, error) {
	if gen == nil {
		return nil, fmt.Errorf("pg: token generator is required")
	}
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	if opts.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(opts.MaxOpenConns)
	}
	// Mapear MaxIdleConns → MinConns (pgxpool)
	if opts.MaxIdleConns > 0 {
		pcfg.MinConns = int32(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(opts.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
			pcfg.MaxConnIdleTime = d
		}
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 5
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	// Non-blocking startup: try to ping, but don't fail if it fails.
	// This allows the app to start even if DB is temporarily down.
	if err := pool.Ping(ctx); err != nil {
		logger.L().Warn("pg pool startup ping failed", logger.Err(err))
	} else {
		logger.L().Info("pg pool ready", logger.Int("max_conns", int(pcfg.MaxConns)))
	}

	return &Store{pool: pool, gen: gen}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Pool expone el pool interno (metrics/migraciones).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// PoolStats devuelve un snapshot del estado del pool (nil si no hay pool).
func (s *Store) PoolStats() *pgxpool.Stat {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Stat()
}

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// FindByToken busca la cuenta por token, match exacto.
func (s *Store) FindByToken(ctx context.Context, token string) (*core.Account, error) {
	const q = `SELECT id, email, token, created_at FROM account WHERE token = $1 LIMIT 1`

	var a core.Account
	err := s.pool.QueryRow(ctx, q, token).Scan(&a.ID, &a.Email, &a.Token, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("pg find by token: %w: %v", core.ErrUnavailable, err)
	}
	return &a, nil
}

// FindOrCreateByEmail crea o devuelve la cuenta existente en un único
// statement: el DO UPDATE no-op sobre el email hace que RETURNING entregue la
// fila existente con su token original, así que la operación es atómica e
// idempotente sin check-then-insert. Si salta la constraint única del token
// (colisión del generador), se reintenta con un token nuevo.
func (s *Store) FindOrCreateByEmail(ctx context.Context, email string) (*core.Account, error) {
	const q = `
INSERT INTO account (email, token)
VALUES ($1, $2)
ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
RETURNING id, email, token, created_at`

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		tok, err := s.gen()
		if err != nil {
			return nil, fmt.Errorf("pg generate token: %w", err)
		}

		var a core.Account
		err = s.pool.QueryRow(ctx, q, email, tok).Scan(&a.ID, &a.Email, &a.Token, &a.CreatedAt)
		if err == nil {
			return &a, nil
		}
		if isUniqueViolation(err, "account_token_key") {
			logger.From(ctx).Warn("token collision, retrying",
				logger.Component("pg"),
				logger.Int("attempt", attempt+1),
			)
			continue
		}
		return nil, fmt.Errorf("pg find or create by email: %w: %v", core.ErrUnavailable, err)
	}
	return nil, fmt.Errorf("pg find or create by email: %w", core.ErrConflict)
}

// isUniqueViolation detecta un 23505 sobre la constraint dada.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

// RunMigrations aplica los *_up.sql embebidos en orden lexicográfico.
func (s *Store) RunMigrations(ctx context.Context, fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), "_up.sql") {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := fs.ReadFile(fsys, f)
		if err != nil {
			return err
		}
		if _, err := s.pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
	}
	return nil
}
