package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// HandlePurgeAssets deletes every asset of a user or website. A partial
// failure is retried; assets already removed are no longer listed.
func (h *Handlers) HandlePurgeAssets(ctx context.Context, task *asynq.Task) error {
	var payload PurgeAssetsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		h.logger.ErrorContext(ctx, "failed to parse task payload", slog.String("type", task.Type()), slog.String("err", err.Error()))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	if (payload.UserID == uuid.Nil) == (payload.WebsiteID == uuid.Nil) {
		return fmt.Errorf("purge needs exactly one owner: %w", asynq.SkipRetry)
	}

	attrs := []any{
		slog.String("user_id", payload.UserID.String()),
		slog.String("website_id", payload.WebsiteID.String()),
	}

	n, err := h.usecase.PurgeAssets(ctx, payload)
	if err != nil {
		h.logger.ErrorContext(ctx, "purge incomplete", append(attrs, slog.Int("deleted", n), slog.String("err", err.Error()))...)
		return err
	}

	h.logger.InfoContext(ctx, "purged assets", append(attrs, slog.Int("deleted", n))...)
	return nil
}
