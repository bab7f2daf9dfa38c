package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MirrorAsset copies the original of an asset to the off-site mirror.
// Assets deleted since the job was queued are skipped.
func (u Usecase) MirrorAsset(ctx context.Context, id uuid.UUID) error {
	if u.mirror == nil {
		return nil
	}
	ctx, span := tracer.Start(ctx, "usecase.MirrorAsset")
	defer span.End()

	a, err := u.loadAsset(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	path := u.storage.OriginalPath(a.ID, a.Extension())
	if err := u.mirror.Put(ctx, mirrorKey(a), path, a.ContentType); err != nil {
		return u.storageError(ctx, "mirror asset", err)
	}
	return nil
}

// SweepStaging removes staging files older than maxAge left behind by
// interrupted uploads.
func (u Usecase) SweepStaging(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = u.cfg.StagingMaxAge
	}
	n, err := u.storage.SweepStaging(time.Now().Add(-maxAge))
	if err != nil {
		return n, u.storageError(ctx, "sweep staging", err)
	}
	if n > 0 {
		u.logger.InfoContext(ctx, "swept staging files", "count", n)
	}
	return n, nil
}
