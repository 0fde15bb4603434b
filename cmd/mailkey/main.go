package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/mailkey/internal/config"
	"github.com/dropDatabas3/mailkey/internal/email"
	httpx "github.com/dropDatabas3/mailkey/internal/http"
	accountsctrl "github.com/dropDatabas3/mailkey/internal/http/controllers/accounts"
	healthctrl "github.com/dropDatabas3/mailkey/internal/http/controllers/health"
	accountssvc "github.com/dropDatabas3/mailkey/internal/http/services/accounts"
	"github.com/dropDatabas3/mailkey/internal/observability/logger"
	tokens "github.com/dropDatabas3/mailkey/internal/security/token"
	"github.com/dropDatabas3/mailkey/internal/store/core"
	"github.com/dropDatabas3/mailkey/internal/store/memory"
	"github.com/dropDatabas3/mailkey/internal/store/pg"
	migrations "github.com/dropDatabas3/mailkey/migrations/postgres"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", envOr("MAILKEY_CONFIG", "config.yaml"), "ruta al archivo de configuración")
	flag.Parse()

	// .env opcional, útil en dev
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	// Config por env-only si el YAML por defecto no existe.
	if _, err := os.Stat(configPath); err != nil && !flagPassed("config") {
		configPath = ""
	}

	// La config es fatal: sin smtp/site/from no tiene sentido arrancar.
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "mailkey",
	})
	defer func() { _ = logger.Sync() }()

	zlog := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// -------------------------------------------------------------------------
	// Storage
	// -------------------------------------------------------------------------
	var (
		store  core.AccountStore
		dbPool func() *pgxpool.Pool
	)
	switch cfg.Storage.Driver {
	case "memory":
		store = memory.New(tokens.Generate)
		zlog.Warn("using in-memory store, data will not survive restarts")
	default: // "postgres", validado en config
		pgStore, err := pg.New(ctx, cfg.Storage.DSN, tokens.Generate, pg.Options{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			zlog.Fatal("postgres init failed", logger.Err(err))
		}
		if cfg.Flags.Migrate {
			if err := pgStore.RunMigrations(ctx, migrations.FS, migrations.Dir); err != nil {
				zlog.Fatal("migrations failed", logger.Err(err))
			}
		}
		store = pgStore
		dbPool = pgStore.Pool
	}
	defer store.Close()

	// -------------------------------------------------------------------------
	// Email
	// -------------------------------------------------------------------------
	sender := &email.SMTPSender{
		Host:               cfg.SMTP.Host,
		Port:               cfg.SMTP.Port,
		FromEmail:          cfg.Mail.FromEmail,
		FromName:           cfg.Mail.FromName,
		User:               cfg.SMTP.Username,
		Pass:               cfg.SMTP.Password,
		TLSMode:            cfg.SMTP.TLS,
		InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		Timeout:            config.MustDuration(cfg.SMTP.SendTimeout),
	}
	notifier, err := email.NewNotifier(email.NotifierConfig{
		Sender:   sender,
		SiteBase: cfg.Mail.SiteBase,
		Subject:  cfg.Mail.Subject,
	})
	if err != nil {
		zlog.Fatal("notifier init failed", logger.Err(err))
	}

	// -------------------------------------------------------------------------
	// HTTP
	// -------------------------------------------------------------------------
	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{DBPool: dbPool})
	if err != nil {
		zlog.Fatal("metrics init failed", logger.Err(err))
	}

	svc := accountssvc.New(accountssvc.Deps{
		Store:     store,
		Notifier:  notifier,
		OpTimeout: config.MustDuration(cfg.Storage.OpTimeout),
	})

	handler := httpx.NewRouter(httpx.RouterDeps{
		Accounts: accountsctrl.New(svc,
			accountsctrl.WithRecorders(httpx.RecordRegistration, httpx.RecordMailSend),
		),
		Health:         healthctrl.New(store.Ping, 2*time.Second),
		MetricsHandler: metricsHandler,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  config.MustDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.MustDuration(cfg.Server.WriteTimeout),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zlog.Info("server listening",
			logger.String("addr", cfg.Server.Addr),
			logger.String("driver", cfg.Storage.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zlog.Fatal("server exited", logger.Err(err))
	}
	zlog.Info("bye")
}

func flagPassed(name string) bool {
	passed := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
