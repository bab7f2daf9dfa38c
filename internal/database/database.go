package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/librarease/assetstore/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

// implements usecase/Repository interface
type service struct {
	db *gorm.DB
}

// Open connects to postgres through the pgx driver and installs the slog
// query logger and tracing plugin.
func Open(cfg config.DBConfig, logger *slog.Logger, level slog.Level) (*gorm.DB, error) {
	sqlDB, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.MaxOpenConnections > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConnections)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: NewSlogGormLogger(logger, level),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	if err := gormDB.Use(tracing.NewPlugin()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("install tracing plugin: %w", err)
	}
	return gormDB, nil
}

// New migrates the schema and wraps gormDB as the asset repository.
func New(gormDB *gorm.DB) (*service, error) {
	if err := gormDB.AutoMigrate(Asset{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &service{db: gormDB}, nil
}

// Health pings the catalog and reports connection pool statistics along
// with the number of stored assets.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	stats := map[string]string{"status": "up"}

	db, err := s.db.DB()
	if err == nil {
		err = db.PingContext(ctx)
	}
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("catalog down: %v", err)
		return stats
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&Asset{}).Count(&count).Error; err != nil {
		stats["status"] = "degraded"
		stats["error"] = fmt.Sprintf("count assets: %v", err)
	} else {
		stats["assets"] = strconv.FormatInt(count, 10)
	}

	dbStats := db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	if dbStats.WaitCount > 1000 {
		stats["message"] = "high number of connection wait events"
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
