package filestorage

import (
	"context"
	"fmt"

	"github.com/librarease/assetstore/internal/config"
)

type Mirror interface {
	Put(ctx context.Context, key, filePath, contentType string) error
	Remove(ctx context.Context, key string) error
}

// NewMirror builds the configured off-site mirror. It returns nil when no
// provider is configured.
func NewMirror(ctx context.Context, cfg config.MirrorConfig) (Mirror, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "minio":
		return NewMinIOMirror(cfg.Bucket, cfg.Prefix, cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, true)
	case "s3":
		return NewS3Mirror(ctx, cfg.Bucket, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown mirror provider %q", cfg.Provider)
	}
}
