package usecase

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DeleteAsset removes the asset record, then its directory of original and
// variants, then any cached copy of the record. Only the record removal
// can fail the call.
func (u Usecase) DeleteAsset(ctx context.Context, a Asset) error {
	ctx, span := tracer.Start(ctx, "usecase.DeleteAsset")
	defer span.End()

	if err := u.repo.DeleteAsset(ctx, a.ID); err != nil {
		span.RecordError(err)
		return u.storageError(ctx, "delete asset", err)
	}
	assetsDeleted.Add(ctx, 1)

	if err := u.storage.RemoveAsset(a.ID); err != nil {
		u.logger.WarnContext(ctx, "failed to remove asset directory", "asset_id", a.ID, "error", err)
	}
	if u.cache != nil {
		if err := u.cache.Delete(ctx, assetCacheKey(a.ID)); err != nil {
			u.logger.WarnContext(ctx, "failed to evict cached asset", "asset_id", a.ID, "error", err)
		}
	}
	if u.mirror != nil {
		if err := u.mirror.Remove(ctx, mirrorKey(a)); err != nil {
			u.logger.WarnContext(ctx, "failed to remove mirrored asset", "asset_id", a.ID, "error", err)
		}
	}
	return nil
}

// PurgeAssetsOption names the owner whose assets are removed. Exactly one
// of the fields is set.
type PurgeAssetsOption struct {
	UserID    uuid.UUID `json:"user_id,omitempty"`
	WebsiteID uuid.UUID `json:"website_id,omitempty"`
}

var errPurgeWithoutOwner = errors.New("purge requires a user or website")

// DeleteAssetsByUser removes every asset owned by the user.
func (u Usecase) DeleteAssetsByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return u.PurgeAssets(ctx, PurgeAssetsOption{UserID: userID})
}

// DeleteAssetsByWebsite removes every asset scoped to the website.
func (u Usecase) DeleteAssetsByWebsite(ctx context.Context, websiteID uuid.UUID) (int, error) {
	return u.PurgeAssets(ctx, PurgeAssetsOption{WebsiteID: websiteID})
}

// PurgeAssets deletes the owner's assets with bounded concurrency. Every
// asset is attempted; the count of deleted assets and the first error are
// returned.
func (u Usecase) PurgeAssets(ctx context.Context, opt PurgeAssetsOption) (int, error) {
	if (opt.UserID == uuid.Nil) == (opt.WebsiteID == uuid.Nil) {
		return 0, errPurgeWithoutOwner
	}

	list, err := u.repo.FindAssets(ctx, ListAssetsOption{UserID: opt.UserID, WebsiteID: opt.WebsiteID})
	if err != nil {
		return 0, u.storageError(ctx, "find assets", err)
	}

	var (
		g       errgroup.Group
		deleted atomic.Int64
	)
	g.SetLimit(max(u.cfg.DeleteConcurrency, 1))
	for _, a := range list {
		g.Go(func() error {
			if err := u.DeleteAsset(ctx, a); err != nil {
				return err
			}
			deleted.Add(1)
			return nil
		})
	}
	err = g.Wait()
	return int(deleted.Load()), err
}

type PurgeResult struct {
	Queued  bool
	Deleted int
}

// RequestPurge hands the purge to the worker queue when one is configured
// and runs it inline otherwise.
func (u Usecase) RequestPurge(ctx context.Context, opt PurgeAssetsOption) (PurgeResult, error) {
	if (opt.UserID == uuid.Nil) == (opt.WebsiteID == uuid.Nil) {
		return PurgeResult{}, errPurgeWithoutOwner
	}
	if u.queue != nil {
		if err := u.queue.EnqueuePurgeAssets(ctx, opt); err != nil {
			return PurgeResult{}, err
		}
		return PurgeResult{Queued: true}, nil
	}
	n, err := u.PurgeAssets(ctx, opt)
	return PurgeResult{Deleted: n}, err
}
