package usecase

import (
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/librarease/assetstore/internal/imageops"
)

// Asset is an immutable uploaded file.
type Asset struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	WebsiteID   *uuid.UUID
	FileName    string
	ContentType string
	ByteSize    int64
	Digest      string
	Colors      []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Extension is the file extension of the stored original.
func (a Asset) Extension() string {
	mt, _, err := mime.ParseMediaType(a.ContentType)
	if err != nil {
		return ""
	}
	_, sub, ok := strings.Cut(mt, "/")
	if !ok || sub == "" {
		return ""
	}
	if sub == "jpeg" {
		return ".jpg"
	}
	return "." + sub
}

func (a Asset) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

// VariantFileName is the file name offered to clients for a rendition.
// Without both dimensions it is the original file name.
func (a Asset) VariantFileName(width, height *int, fill *bool) string {
	if width == nil || height == nil {
		return a.FileName
	}
	stem, _, _ := strings.Cut(a.FileName, ".")
	suffix := ""
	if fill != nil && *fill {
		suffix = "_fill"
	}
	ext := imageops.VariantFormat(a.ContentType).Extension
	return fmt.Sprintf("%s_%dx%d%s%s", stem, *width, *height, suffix, ext)
}

func assetCacheKey(id uuid.UUID) string {
	return "get_asset_by_id:" + id.String()
}

func mirrorKey(a Asset) string {
	return fmt.Sprintf("blobs/%s/default%s", a.ID, a.Extension())
}

type CursorPage[T any] struct {
	Nodes       []T
	EndCursor   *uuid.UUID
	HasNextPage bool
}
