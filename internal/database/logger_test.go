package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/librarease/assetstore/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBufferedLogger(level slog.Level) (*SlogGormLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewSlogGormLogger(l, level), &buf
}

func statement() (string, int64) {
	return "SELECT * FROM assets", 1
}

func TestSlogGormLoggerLevels(t *testing.T) {
	debug, _ := newBufferedLogger(slog.LevelDebug)
	assert.Equal(t, logger.Info, debug.LogLevel)

	info, _ := newBufferedLogger(slog.LevelInfo)
	assert.Equal(t, logger.Warn, info.LogLevel)

	errLevel, _ := newBufferedLogger(slog.LevelError)
	assert.Equal(t, logger.Error, errLevel.LogLevel)
}

func TestSlogGormLoggerTrace(t *testing.T) {
	ctx := context.Background()

	l, buf := newBufferedLogger(slog.LevelInfo)
	l.Trace(ctx, time.Now(), statement, nil)
	assert.Empty(t, buf.String(), "fast statements are not logged at INFO")

	l.Trace(ctx, time.Now(), statement, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String(), "missing rows are not failures")

	l.Trace(ctx, time.Now(), statement, errors.New("relation does not exist"))
	assert.Contains(t, buf.String(), "catalog query failed")
	assert.Contains(t, buf.String(), "db.err=")
	assert.Contains(t, buf.String(), "component=catalog")

	buf.Reset()
	l.Trace(ctx, time.Now().Add(-time.Second), statement, nil)
	assert.Contains(t, buf.String(), "slow catalog query")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(ctx, time.Now(), statement, errors.New("boom"))
	assert.Empty(t, buf.String())

	d, buf := newBufferedLogger(slog.LevelDebug)
	d.Trace(ctx, time.Now(), statement, nil)
	assert.Contains(t, buf.String(), `db.sql="SELECT * FROM assets"`)
}

func TestHealth(t *testing.T) {
	s := newTestService(t)
	createAsset(t, s, usecase.Asset{UserID: uuid.New()})

	stats := s.Health()
	require.Equal(t, "up", stats["status"], stats["error"])
	assert.Equal(t, "1", stats["assets"])
}
