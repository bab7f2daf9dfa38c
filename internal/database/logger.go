package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SlogGormLogger writes catalog statements to slog under a "db" group.
type SlogGormLogger struct {
	Logger        *slog.Logger
	LogLevel      logger.LogLevel
	SlowThreshold time.Duration
}

// NewSlogGormLogger maps the application log level to a gorm level. Only
// DEBUG logs every statement.
func NewSlogGormLogger(l *slog.Logger, level slog.Level) *SlogGormLogger {
	if l == nil {
		l = slog.Default()
	}

	gormLevel := logger.Warn
	switch {
	case level <= slog.LevelDebug:
		gormLevel = logger.Info
	case level >= slog.LevelError:
		gormLevel = logger.Error
	}

	return &SlogGormLogger{
		Logger:        l.With(slog.String("component", "catalog")),
		LogLevel:      gormLevel,
		SlowThreshold: 200 * time.Millisecond,
	}
}

func (l *SlogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *SlogGormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.logf(ctx, logger.Info, slog.LevelInfo, msg, args...)
}

func (l *SlogGormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.logf(ctx, logger.Warn, slog.LevelWarn, msg, args...)
}

func (l *SlogGormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.logf(ctx, logger.Error, slog.LevelError, msg, args...)
}

func (l *SlogGormLogger) logf(ctx context.Context, threshold logger.LogLevel, level slog.Level, msg string, args ...interface{}) {
	if l.LogLevel >= threshold {
		l.Logger.Log(ctx, level, fmt.Sprintf(msg, args...))
	}
}

// Trace logs failed statements, slow statements, and at Info every
// statement. A missing row is not a failure: lookups report it as
// usecase.ErrNotFound.
func (l *SlogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := l.SlowThreshold != 0 && elapsed > l.SlowThreshold

	var (
		level slog.Level
		msg   string
	)
	switch {
	case failed && l.LogLevel >= logger.Error:
		level, msg = slog.LevelError, "catalog query failed"
	case slow && l.LogLevel >= logger.Warn:
		level, msg = slog.LevelWarn, "slow catalog query"
	case l.LogLevel >= logger.Info:
		level, msg = slog.LevelDebug, "catalog query"
	default:
		return
	}

	sql, rows := fc()
	attrs := []any{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("latency", elapsed),
		slog.String("caller", caller()),
	}
	if failed {
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	l.Logger.Log(ctx, level, msg, slog.Group("db", attrs...))
}

// caller is the first frame outside gorm and this file.
func caller() string {
	for i := 3; i < 16; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if strings.Contains(file, "gorm.io") || strings.HasSuffix(file, "/database/logger.go") {
			continue
		}
		return fmt.Sprintf("%s:%d", file, line)
	}
	return ""
}
