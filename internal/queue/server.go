package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/librarease/assetstore/internal/bootstrap"
	"github.com/librarease/assetstore/internal/config"
	"github.com/librarease/assetstore/internal/queue/handlers"
)

// SweepStagingSchedule is the cron spec of the staging sweep.
const SweepStagingSchedule = "@every 1h"

var errNoRedis = errors.New("queue requires REDIS_HOST")

// Worker processes asset tasks with all its dependencies
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	services *bootstrap.Services
	logger   *slog.Logger
}

// NewWorker creates a fully configured worker. The worker's usecase has no
// queue client: everything it runs happens inline.
func NewWorker(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Worker, error) {
	if cfg.Redis.Addr() == "" {
		return nil, errNoRedis
	}
	logger.Info("Initializing worker dependencies...")

	services, err := bootstrap.Open(ctx, cfg, logger, nil)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: max(cfg.WorkerConcurrency, 1),
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger: asynqLogger{logger},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.ErrorContext(ctx, "task failed",
					slog.String("type", task.Type()),
					slog.Int("retried", retried),
					slog.Int("max_retry", maxRetry),
					slog.String("err", err.Error()),
				)
			}),
		},
	)

	h := handlers.NewHandlers(services.Usecase, logger)

	mux := asynq.NewServeMux()
	mux.HandleFunc(handlers.TypeMirrorAsset, h.HandleMirrorAsset)
	mux.HandleFunc(handlers.TypePurgeAssets, h.HandlePurgeAssets)
	mux.HandleFunc(handlers.TypeSweepStaging, h.HandleSweepStaging)

	logger.Info("Worker registered handlers",
		slog.Any("types", []string{handlers.TypeMirrorAsset, handlers.TypePurgeAssets, handlers.TypeSweepStaging}),
	)

	return &Worker{
		server:   server,
		mux:      mux,
		services: services,
		logger:   logger,
	}, nil
}

// Start starts the worker server
func (w *Worker) Start() error {
	w.logger.Info("Worker started successfully")
	return w.server.Start(w.mux)
}

// Stop stops the worker server gracefully
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.server.Shutdown()

	if err := w.services.Close(); err != nil {
		w.logger.Error("Error closing worker dependencies", slog.String("err", err.Error()))
	}
}

// Scheduler enqueues periodic maintenance tasks.
type Scheduler struct {
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

func NewScheduler(cfg config.Config, logger *slog.Logger) (*Scheduler, error) {
	if cfg.Redis.Addr() == "" {
		return nil, errNoRedis
	}

	scheduler := asynq.NewScheduler(redisOpt(cfg), &asynq.SchedulerOpts{
		Logger:   asynqLogger{logger},
		Location: time.UTC,
	})

	entryID, err := scheduler.Register(SweepStagingSchedule, asynq.NewTask(handlers.TypeSweepStaging, nil), asynq.Queue("low"))
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", handlers.TypeSweepStaging, err)
	}
	logger.Info("Scheduler registered task",
		slog.String("type", handlers.TypeSweepStaging),
		slog.String("spec", SweepStagingSchedule),
		slog.String("entry_id", entryID),
	)

	return &Scheduler{scheduler: scheduler, logger: logger}, nil
}

func (s *Scheduler) Start() error {
	s.logger.Info("Scheduler started successfully")
	return s.scheduler.Start()
}

func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler...")
	s.scheduler.Shutdown()
}

func redisOpt(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	}
}

// asynqLogger routes asynq's internal logging through slog.
type asynqLogger struct {
	l *slog.Logger
}

func (a asynqLogger) Debug(args ...any) { a.l.Debug(fmt.Sprint(args...), "component", "asynq") }
func (a asynqLogger) Info(args ...any)  { a.l.Info(fmt.Sprint(args...), "component", "asynq") }
func (a asynqLogger) Warn(args ...any)  { a.l.Warn(fmt.Sprint(args...), "component", "asynq") }
func (a asynqLogger) Error(args ...any) { a.l.Error(fmt.Sprint(args...), "component", "asynq") }
func (a asynqLogger) Fatal(args ...any) { a.l.Error(fmt.Sprint(args...), "component", "asynq", "fatal", true) }
