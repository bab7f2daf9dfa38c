package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/librarease/assetstore/internal/bootstrap"
	"github.com/librarease/assetstore/internal/config"
	"github.com/librarease/assetstore/internal/firebase"
	"github.com/librarease/assetstore/internal/queue"
	"github.com/librarease/assetstore/internal/telemetry"
	"github.com/librarease/assetstore/internal/usecase"
)

// App is the API process: the HTTP server plus everything it owns.
type App struct {
	logger   *slog.Logger
	http     *http.Server
	services *bootstrap.Services
	queue    *queue.Client

	shutdownTelemetry telemetry.ShutdownFunc
}

func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	logger := slog.New(telemetry.NewTraceHandler(jsonHandler))
	slog.SetDefault(logger)

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTLPEnabled)
	if err != nil {
		return nil, fmt.Errorf("setup telemetry: %w", err)
	}

	app := &App{
		logger:            logger,
		shutdownTelemetry: shutdownTelemetry,
	}

	var q usecase.Queue
	if addr := cfg.Redis.Addr(); addr != "" {
		app.queue = queue.NewClient(addr, cfg.Redis.Password, logger)
		q = app.queue
	} else {
		logger.Warn("REDIS_HOST not set, purges run inline and mirroring is disabled")
	}

	app.services, err = bootstrap.Open(ctx, cfg, logger, q)
	if err != nil {
		app.Shutdown(ctx)
		return nil, err
	}

	var verifier TokenVerifier
	if cfg.FirebaseCredentialsPath != "" {
		fb, err := firebase.New(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			app.Shutdown(ctx)
			return nil, fmt.Errorf("firebase: %w", err)
		}
		verifier = fb
	} else {
		logger.Warn("FIREBASE_SERVICE_ACCOUNT_KEY_PATH not set, only internal clients can act for users")
	}

	s := NewServer(app.services.Usecase, verifier, cfg, logger)
	app.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return app, nil
}

func (a *App) Addr() string {
	return a.http.Addr
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

// ListenAndServe blocks until the server stops. A graceful shutdown is not
// reported as an error.
func (a *App) ListenAndServe() error {
	if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.http != nil {
		errs = append(errs, a.http.Shutdown(ctx))
	}
	if a.services != nil {
		errs = append(errs, a.services.Close())
	}
	if a.queue != nil {
		errs = append(errs, a.queue.Close())
	}
	if a.shutdownTelemetry != nil {
		errs = append(errs, a.shutdownTelemetry(ctx))
	}
	return errors.Join(errs...)
}
