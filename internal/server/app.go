// Package server initializes and runs the todokeeper API server.
// It opens the configured store, applies migrations, wires the services into
// the HTTP API and shuts down gracefully on SIGINT, SIGTERM or SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewApp connects to storage and runs migrations. The caller must call Close.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, m, err := repomanager.Open(ctx, c.StorageDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	logger.Info(ctx, "Storage ready", "driver", c.StorageDriver)

	return &App{config: c, logger: logger, db: db, repomanager: m}, nil
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

func (app *App) newHTTPServer() *httpapi.HTTPServer {
	tokens := auth.NewTokenManager([]byte(app.config.SecretKey), app.config.TokenValidityDuration)

	us := services.NewUserService(app.db, app.repomanager, auth.NewBcryptHasher(), tokens)
	ts := services.NewTodoService(app.db, app.repomanager)

	return httpapi.NewHTTPServer(app.config.HTTPAddress, app.logger, us, ts, tokens, app.config.ShutdownTimeout)
}

// Run serves the API until a stop signal arrives or ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := app.initSignalHandler(ctx)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	if err := app.newHTTPServer().Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}

func (app *App) Close() error {
	return app.db.Close()
}
