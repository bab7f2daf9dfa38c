package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/librarease/assetstore/internal/imageops"
	"go.opentelemetry.io/otel/attribute"
)

// ReadAssetOption selects a rendition. Both Width and Height are needed
// for a resized variant; otherwise the original is returned.
type ReadAssetOption struct {
	Width  *int
	Height *int
	Fill   *bool
}

func (o ReadAssetOption) hasDimensions() bool {
	return o.Width != nil && o.Height != nil
}

func (o ReadAssetOption) fill() bool {
	return o.Fill != nil && *o.Fill
}

type AssetContent struct {
	Data        []byte
	ContentType string
	FileName    string
}

// ReadAsset returns the original bytes or a resized variant. Variants are
// rendered once and served from disk afterwards.
func (u Usecase) ReadAsset(ctx context.Context, a Asset, opt ReadAssetOption) (AssetContent, error) {
	ctx, span := tracer.Start(ctx, "usecase.ReadAsset")
	defer span.End()

	original := u.storage.OriginalPath(a.ID, a.Extension())
	if !opt.hasDimensions() {
		data, err := os.ReadFile(original)
		if err != nil {
			return AssetContent{}, u.storageError(ctx, "read original", err)
		}
		return AssetContent{Data: data, ContentType: a.ContentType, FileName: a.FileName}, nil
	}

	width, height, fill := *opt.Width, *opt.Height, opt.fill()
	if width <= 0 || height <= 0 {
		return AssetContent{}, u.storageError(ctx, "read variant", fmt.Errorf("invalid dimensions %dx%d", width, height))
	}
	span.SetAttributes(
		attribute.Int("variant.width", width),
		attribute.Int("variant.height", height),
		attribute.Bool("variant.fill", fill),
	)

	format := imageops.VariantFormat(a.ContentType)
	content := AssetContent{
		ContentType: format.ContentType,
		FileName:    a.VariantFileName(opt.Width, opt.Height, opt.Fill),
	}

	path := u.storage.VariantPath(a.ID, width, height, fill, format.Extension)
	data, err := os.ReadFile(path)
	if err == nil {
		variantCacheHits.Add(ctx, 1)
		content.Data = data
		return content, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return AssetContent{}, u.storageError(ctx, "read variant", err)
	}

	src, err := os.Open(original)
	if err != nil {
		return AssetContent{}, u.storageError(ctx, "open original", err)
	}
	defer src.Close()

	var buf bytes.Buffer
	err = u.images.Variant(&buf, src, imageops.VariantOption{
		Width:  width,
		Height: height,
		Fill:   fill,
		Format: format.Encoding,
	})
	if err != nil {
		return AssetContent{}, u.storageError(ctx, "render variant", err)
	}
	variantsGenerated.Add(ctx, 1)

	if err := u.storage.WriteAtomic(path, buf.Bytes()); err != nil {
		u.logger.WarnContext(ctx, "failed to cache variant", "asset_id", a.ID, "path", path, "error", err)
	}

	content.Data = buf.Bytes()
	return content, nil
}
