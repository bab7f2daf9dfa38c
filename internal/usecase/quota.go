package usecase

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type WebsiteStorage struct {
	Max       int64
	Used      int64
	Available int64
}

func (u Usecase) GetWebsiteStorage(ctx context.Context, websiteID uuid.UUID) (WebsiteStorage, error) {
	used, err := u.repo.SumAssetSize(ctx, websiteID)
	if err != nil {
		return WebsiteStorage{}, u.storageError(ctx, "sum website storage", err)
	}
	return WebsiteStorage{
		Max:       u.cfg.WebsiteMaxStorage,
		Used:      used,
		Available: u.cfg.WebsiteMaxStorage - used,
	}, nil
}

// checkQuota rejects byteSize when it is larger than what the website has
// left. Unscoped assets and disabled quotas always pass.
func (u Usecase) checkQuota(ctx context.Context, websiteID *uuid.UUID, byteSize int64) error {
	if websiteID == nil || !u.cfg.WebsiteStorageEnabled {
		return nil
	}
	s, err := u.GetWebsiteStorage(ctx, *websiteID)
	if err != nil {
		return err
	}
	if s.Available < byteSize {
		msg := fmt.Sprintf("not enough storage: %s available, %s required",
			humanize.IBytes(uint64(max(s.Available, 0))), humanize.IBytes(uint64(byteSize)))
		assetsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "quota_exceeded")))
		return &FieldError{Field: "file", Code: "quota_exceeded", Message: msg, Err: ErrQuotaExceeded}
	}
	return nil
}
