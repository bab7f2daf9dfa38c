package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type InsertAssetOption struct {
	UserID      uuid.UUID
	WebsiteID   *uuid.UUID
	FileName    string
	ContentType string
	Reader      io.Reader
}

// DuplicateAssetOption identifies content already stored for an owner.
type DuplicateAssetOption struct {
	UserID      uuid.UUID
	WebsiteID   *uuid.UUID
	ContentType string
	ByteSize    int64
	Digest      string
}

// InsertAsset stores the content of opt.Reader as a new asset. When the
// same owner already stored identical content under the same content type
// the existing asset is returned and nothing new is written.
func (u Usecase) InsertAsset(ctx context.Context, opt InsertAssetOption) (Asset, error) {
	ctx, span := tracer.Start(ctx, "usecase.InsertAsset")
	defer span.End()

	staged, err := u.stage(ctx, opt.Reader)
	if err != nil {
		span.RecordError(err)
		return Asset{}, err
	}
	committed := false
	defer func() {
		if !committed {
			os.Remove(staged.Path)
		}
	}()

	if err := u.checkQuota(ctx, opt.WebsiteID, staged.ByteSize); err != nil {
		return Asset{}, err
	}

	contentType := normalizeContentType(opt.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
		if m, err := mimetype.DetectFile(staged.Path); err == nil {
			contentType = normalizeContentType(m.String())
		}
	}

	dup, err := u.repo.FindDuplicateAsset(ctx, DuplicateAssetOption{
		UserID:      opt.UserID,
		WebsiteID:   opt.WebsiteID,
		ContentType: contentType,
		ByteSize:    staged.ByteSize,
		Digest:      staged.Digest,
	})
	if err == nil {
		assetsDeduplicated.Add(ctx, 1)
		return dup, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Asset{}, u.storageError(ctx, "find duplicate asset", err)
	}

	if _, ok := u.allowedTypes[contentType]; !ok {
		assetsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "unsupported_content_type")))
		return Asset{}, &FieldError{
			Field:   "file",
			Code:    "unsupported_content_type",
			Message: "unsupported content type " + contentType,
			Err:     ErrUnsupportedContentType,
		}
	}

	asset := Asset{
		ID:          uuid.New(),
		UserID:      opt.UserID,
		WebsiteID:   opt.WebsiteID,
		FileName:    opt.FileName,
		ContentType: contentType,
		ByteSize:    staged.ByteSize,
		Digest:      staged.Digest,
	}
	if asset.IsImage() {
		asset.Colors = u.extractColors(staged.Path)
	}

	asset, err = u.repo.CreateAsset(ctx, asset)
	if err != nil {
		return Asset{}, u.storageError(ctx, "create asset", err)
	}

	if err := u.storage.Commit(staged.Path, asset.ID, asset.Extension()); err != nil {
		if derr := u.repo.DeleteAsset(context.WithoutCancel(ctx), asset.ID); derr != nil {
			u.logger.ErrorContext(ctx, "failed to roll back asset record", "asset_id", asset.ID, "error", derr)
		}
		return Asset{}, u.storageError(ctx, "commit asset", err)
	}
	committed = true

	if u.queue != nil && u.cfg.Mirror.Provider != "" {
		if err := u.queue.EnqueueMirrorAsset(ctx, asset.ID); err != nil {
			u.logger.WarnContext(ctx, "failed to enqueue mirror", "asset_id", asset.ID, "error", err)
		}
	}

	attrs := metric.WithAttributes(attribute.String("content_type", contentType))
	assetsIngested.Add(ctx, 1, attrs)
	ingestedBytes.Add(ctx, asset.ByteSize, attrs)
	span.SetAttributes(attribute.String("asset.id", asset.ID.String()))

	return asset, nil
}

// extractColors returns the JSON encoded palette of the image at path.
// Images that cannot be decoded get no palette.
func (u Usecase) extractColors(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	palette, err := u.images.Palette(f)
	if err != nil {
		u.logger.Debug("palette extraction skipped", "error", err)
		return nil
	}
	b, err := json.Marshal(palette)
	if err != nil {
		return nil
	}
	return b
}

func normalizeContentType(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(v)
	}
	return mt
}
