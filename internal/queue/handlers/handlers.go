package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/librarease/assetstore/internal/usecase"
)

// Task types.
const (
	TypeMirrorAsset  = "asset:mirror"
	TypePurgeAssets  = "assets:purge"
	TypeSweepStaging = "assets:sweep-staging"
)

// Usecase is the part of the asset store the worker drives.
type Usecase interface {
	MirrorAsset(ctx context.Context, id uuid.UUID) error
	PurgeAssets(ctx context.Context, opt usecase.PurgeAssetsOption) (int, error)
	SweepStaging(ctx context.Context, maxAge time.Duration) (int, error)
}

// Handlers contains all queue task handlers
type Handlers struct {
	usecase Usecase
	logger  *slog.Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(uc Usecase, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		usecase: uc,
		logger:  logger,
	}
}

type MirrorAssetPayload struct {
	AssetID uuid.UUID `json:"asset_id"`
}

type PurgeAssetsPayload = usecase.PurgeAssetsOption

// SweepStagingPayload is the payload of the scheduled sweep. A zero MaxAge
// uses the configured default.
type SweepStagingPayload struct {
	MaxAge time.Duration `json:"max_age,omitempty"`
}
