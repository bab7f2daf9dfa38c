package queue

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/librarease/assetstore/internal/config"
)

func TestQueueRequiresRedis(t *testing.T) {
	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	_, err := NewWorker(context.Background(), cfg, logger)
	assert.ErrorIs(t, err, errNoRedis)

	_, err = NewScheduler(cfg, logger)
	assert.ErrorIs(t, err, errNoRedis)
}

func TestAsynqLogger(t *testing.T) {
	var buf bytes.Buffer
	l := asynqLogger{slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	l.Warn("lease ", "expired")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), `msg="lease expired"`)
	assert.Contains(t, buf.String(), "component=asynq")
}
