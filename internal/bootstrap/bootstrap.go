// Package bootstrap builds the usecase and its dependencies from config.
// It is shared by the API server and the queue worker.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/librarease/assetstore/internal/cache"
	"github.com/librarease/assetstore/internal/config"
	"github.com/librarease/assetstore/internal/database"
	"github.com/librarease/assetstore/internal/filestorage"
	"github.com/librarease/assetstore/internal/imageops"
	"github.com/librarease/assetstore/internal/usecase"
)

type Services struct {
	Usecase usecase.Usecase
	Storage *filestorage.Local

	closers []func() error
}

// Open connects to the catalog and cache and assembles the usecase. queue
// may be nil, in which case mirror and purge work runs inline or not at all.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger, queue usecase.Queue) (*Services, error) {
	s := &Services{}

	gormDB, err := database.Open(cfg.DB, logger, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	repo, err := database.New(gormDB)
	if err != nil {
		if sqlDB, derr := gormDB.DB(); derr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	s.closers = append(s.closers, repo.Close)

	storage, err := filestorage.NewLocal(cfg.StoragePath)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	s.Storage = storage

	images, err := imageops.New(cfg.ImageFilter, cfg.JPEGQuality, cfg.FontPath)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("image processor: %w", err)
	}

	mirror, err := filestorage.NewMirror(ctx, cfg.Mirror)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("mirror: %w", err)
	}
	var ucMirror usecase.Mirror
	if mirror != nil {
		ucMirror = mirror
	}

	c, closeCache, err := openCache(ctx, cfg, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.closers = append(s.closers, closeCache)

	s.Usecase = usecase.New(
		cfg,
		repo,
		storage,
		c,
		images,
		ucMirror,
		queue,
		logger,
	)
	return s, nil
}

// openCache returns a redis cache when redis is configured and an
// in-process cache otherwise. The worker evicts purged assets from redis
// only, so a configured redis that cannot be reached is an error.
func openCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (usecase.Cache, func() error, error) {
	addr := cfg.Redis.Addr()
	if addr == "" {
		mc, err := cache.NewMemory(cfg.AssetCacheTTL, cfg.MemoryCacheMaxSize)
		if err != nil {
			return nil, nil, fmt.Errorf("memory cache: %w", err)
		}
		logger.InfoContext(ctx, "using memory cache", "max_size_mb", cfg.MemoryCacheMaxSize)
		return mc, mc.Close, nil
	}

	rc, err := cache.NewRedis(addr, cfg.Redis.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		rc.Close()
		return nil, nil, fmt.Errorf("redis cache unreachable at %s: %w", addr, err)
	}
	return rc, rc.Close, nil
}

func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}
