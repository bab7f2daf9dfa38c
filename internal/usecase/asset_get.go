package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// GetAssetOption narrows a lookup to an owner. Zero values do not filter.
type GetAssetOption struct {
	UserID    uuid.UUID
	WebsiteID uuid.UUID
}

func (o GetAssetOption) match(a Asset) bool {
	if o.UserID != uuid.Nil && a.UserID != o.UserID {
		return false
	}
	if o.WebsiteID != uuid.Nil && (a.WebsiteID == nil || *a.WebsiteID != o.WebsiteID) {
		return false
	}
	return true
}

// GetAssetByID returns the asset when it exists and matches the owner
// filter. A filter mismatch is reported as ErrNotFound.
func (u Usecase) GetAssetByID(ctx context.Context, id uuid.UUID, opt GetAssetOption) (Asset, error) {
	a, err := u.loadAsset(ctx, id)
	if err != nil {
		return Asset{}, err
	}
	if !opt.match(a) {
		return Asset{}, ErrNotFound
	}
	return a, nil
}

// ListAssetsByIDs resolves ids concurrently and keeps the input order.
// Ids that cannot be resolved are left out.
func (u Usecase) ListAssetsByIDs(ctx context.Context, ids []uuid.UUID, opt GetAssetOption) []Asset {
	found := make([]*Asset, len(ids))

	var g errgroup.Group
	g.SetLimit(max(u.cfg.LookupConcurrency, 1))
	for i, id := range ids {
		g.Go(func() error {
			a, err := u.GetAssetByID(ctx, id, opt)
			if err != nil {
				return nil
			}
			found[i] = &a
			return nil
		})
	}
	g.Wait()

	list := make([]Asset, 0, len(ids))
	for _, a := range found {
		if a != nil {
			list = append(list, *a)
		}
	}
	return list
}

// loadAsset reads through the asset cache. Cache failures fall back to the
// repository.
func (u Usecase) loadAsset(ctx context.Context, id uuid.UUID) (Asset, error) {
	key := assetCacheKey(id)
	if u.cache != nil {
		var a Asset
		ok, err := u.cache.Get(ctx, key, &a)
		if err != nil {
			u.logger.WarnContext(ctx, "asset cache get failed", "key", key, "error", err)
		} else if ok {
			return a, nil
		}
	}

	a, err := u.repo.GetAssetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Asset{}, ErrNotFound
	}
	if err != nil {
		return Asset{}, u.storageError(ctx, "get asset", err)
	}

	if u.cache != nil {
		if err := u.cache.Set(ctx, key, a, u.cfg.AssetCacheTTL); err != nil {
			u.logger.WarnContext(ctx, "asset cache set failed", "key", key, "error", err)
		}
	}
	return a, nil
}
