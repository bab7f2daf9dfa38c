package usecase

import (
	"context"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type ListAssetsOption struct {
	UserID    uuid.UUID
	WebsiteID uuid.UUID
	After     uuid.UUID
	First     int
}

// ListAssets pages through assets newest first. An After cursor that does
// not resolve to a visible asset starts from the beginning.
func (u Usecase) ListAssets(ctx context.Context, opt ListAssetsOption) (CursorPage[Asset], error) {
	first := opt.First
	if first <= 0 {
		first = defaultPageSize
	}
	first = min(first, maxPageSize)

	var cursor *Asset
	if opt.After != uuid.Nil {
		c, err := u.GetAssetByID(ctx, opt.After, GetAssetOption{UserID: opt.UserID, WebsiteID: opt.WebsiteID})
		if err == nil {
			cursor = &c
		}
	}

	nodes, err := u.repo.ListAssets(ctx, opt, cursor, first+1)
	if err != nil {
		return CursorPage[Asset]{}, u.storageError(ctx, "list assets", err)
	}

	page := CursorPage[Asset]{Nodes: nodes}
	if len(nodes) > first {
		page.Nodes = nodes[:first]
		page.HasNextPage = true
	}
	if n := len(page.Nodes); n > 0 {
		id := page.Nodes[n-1].ID
		page.EndCursor = &id
	}
	return page, nil
}
