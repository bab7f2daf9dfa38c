package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

func (h *Handlers) HandleSweepStaging(ctx context.Context, task *asynq.Task) error {
	var payload SweepStagingPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			h.logger.WarnContext(ctx, "ignoring sweep payload", slog.String("err", err.Error()))
		}
	}

	n, err := h.usecase.SweepStaging(ctx, payload.MaxAge)
	if err != nil {
		return err
	}
	h.logger.DebugContext(ctx, "staging sweep done", slog.Int("removed", n))
	return nil
}
