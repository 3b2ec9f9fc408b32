// Package server initializes and runs the dealership backend. It loads the
// signing keys, opens the database, applies migrations, wires the services
// and serves the HTTP API until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/silvercar/backend/internal/logging"
	"github.com/silvercar/backend/internal/server/audit"
	"github.com/silvercar/backend/internal/server/auth"
	"github.com/silvercar/backend/internal/server/config"
	"github.com/silvercar/backend/internal/server/email"
	"github.com/silvercar/backend/internal/server/httpapi"
	"github.com/silvercar/backend/internal/server/metrics"
	"github.com/silvercar/backend/internal/server/repositories/repomanager"
	"github.com/silvercar/backend/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	// a missing or unreadable key pair is a deployment error, fail before
	// accepting any traffic
	keys, err := auth.LoadKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("signing keys: %w", err)
	}
	codec := auth.NewCodec(keys)
	hasher := auth.NewHasher(cfg.HashCost)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	mailer := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPPassword, cfg.SMTPTimeout)

	rec := audit.NewRecorder(logger)
	mc := metrics.NewCollector(prometheus.DefaultRegisterer)

	authSvc := services.NewAuthService(db, rm, hasher, codec, cfg, logger, rec, mc)
	resetSvc := services.NewResetService(db, rm, hasher, codec, mailer, cfg, logger, rec, mc)
	orderSvc := services.NewOrderService(db, rm, mailer, logger, rec, mc)

	srv := httpapi.NewServer(cfg.HTTPAddr, logger, authSvc, resetSvc, orderSvc, codec)

	return &App{config: cfg, logger: logger, db: db, httpServer: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
