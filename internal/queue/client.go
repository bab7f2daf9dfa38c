package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/librarease/assetstore/internal/queue/handlers"
	"github.com/librarease/assetstore/internal/usecase"
)

// Client wraps asynq.Client for enqueuing tasks
type Client struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewClient creates a new queue client
func NewClient(redisAddr string, redisPassword string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
	})

	return &Client{
		client: client,
		logger: logger,
	}
}

// Close closes the client connection
func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) EnqueueMirrorAsset(ctx context.Context, id uuid.UUID) error {
	return c.enqueue(ctx, handlers.TypeMirrorAsset, handlers.MirrorAssetPayload{AssetID: id},
		asynq.Queue("low"),
		asynq.MaxRetry(10),
	)
}

func (c *Client) EnqueuePurgeAssets(ctx context.Context, opt usecase.PurgeAssetsOption) error {
	return c.enqueue(ctx, handlers.TypePurgeAssets, handlers.PurgeAssetsPayload(opt),
		asynq.Queue("critical"),
	)
}

func (c *Client) enqueue(ctx context.Context, typ string, payload any, opts ...asynq.Option) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(typ, b), opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	c.logger.DebugContext(ctx, "enqueued task", slog.String("type", typ), slog.String("id", info.ID), slog.String("queue", info.Queue))
	return nil
}
