package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// HandleMirrorAsset copies a committed original to the off-site mirror.
func (h *Handlers) HandleMirrorAsset(ctx context.Context, task *asynq.Task) error {
	var payload MirrorAssetPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		h.logger.ErrorContext(ctx, "failed to parse task payload", slog.String("type", task.Type()), slog.String("err", err.Error()))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	if err := h.usecase.MirrorAsset(ctx, payload.AssetID); err != nil {
		h.logger.ErrorContext(ctx, "failed to mirror asset", slog.String("asset_id", payload.AssetID.String()), slog.String("err", err.Error()))
		return err
	}

	h.logger.DebugContext(ctx, "mirrored asset", slog.String("asset_id", payload.AssetID.String()))
	return nil
}
