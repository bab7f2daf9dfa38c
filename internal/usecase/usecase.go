package usecase

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/librarease/assetstore/internal/config"
	"github.com/librarease/assetstore/internal/imageops"
)

func New(
	cfg config.Config,
	repo Repository,
	storage Storage,
	cache Cache,
	images ImageProcessor,
	mirror Mirror,
	queue Queue,
	logger *slog.Logger,
) Usecase {
	if logger == nil {
		logger = slog.Default()
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedContentTypes))
	for _, t := range cfg.AllowedContentTypes {
		allowed[t] = struct{}{}
	}
	return Usecase{
		cfg:          cfg,
		repo:         repo,
		storage:      storage,
		cache:        cache,
		images:       images,
		mirror:       mirror,
		queue:        queue,
		logger:       logger,
		allowedTypes: allowed,
	}
}

type Repository interface {
	Health() map[string]string
	Close() error

	CreateAsset(context.Context, Asset) (Asset, error)
	GetAssetByID(context.Context, uuid.UUID) (Asset, error)
	FindDuplicateAsset(context.Context, DuplicateAssetOption) (Asset, error)
	ListAssets(ctx context.Context, opt ListAssetsOption, cursor *Asset, limit int) ([]Asset, error)
	FindAssets(context.Context, ListAssetsOption) ([]Asset, error)
	DeleteAsset(context.Context, uuid.UUID) error
	SumAssetSize(ctx context.Context, websiteID uuid.UUID) (int64, error)
}

// Storage is the local filesystem tree holding staging files, originals,
// variants and text icons. Staging and originals must share a filesystem.
type Storage interface {
	CreateStaging() (*os.File, error)
	Commit(stagingPath string, id uuid.UUID, ext string) error
	AssetDir(id uuid.UUID) string
	OriginalPath(id uuid.UUID, ext string) string
	VariantPath(id uuid.UUID, width, height int, fill bool, ext string) string
	TextIconPath(text string, size int) string
	WriteAtomic(path string, data []byte) error
	RemoveAsset(id uuid.UUID) error
	SweepStaging(before time.Time) (int, error)
}

type Cache interface {
	Get(ctx context.Context, key string, v any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type ImageProcessor interface {
	Variant(dst io.Writer, src io.Reader, opt imageops.VariantOption) error
	TextIcon(dst io.Writer, text string, size int) error
	Palette(src io.Reader) (imageops.Palette, error)
}

// Mirror is an off-site copy of original bytes.
type Mirror interface {
	Put(ctx context.Context, key, path, contentType string) error
	Remove(ctx context.Context, key string) error
}

type Queue interface {
	EnqueueMirrorAsset(ctx context.Context, id uuid.UUID) error
	EnqueuePurgeAssets(ctx context.Context, opt PurgeAssetsOption) error
}

type Usecase struct {
	cfg          config.Config
	repo         Repository
	storage      Storage
	cache        Cache
	images       ImageProcessor
	mirror       Mirror
	queue        Queue
	logger       *slog.Logger
	allowedTypes map[string]struct{}
}

func (u Usecase) Health() map[string]string {
	return u.repo.Health()
}

func (u Usecase) Close() error {
	return u.repo.Close()
}
