package server

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/librarease/assetstore/internal/config"
	"github.com/librarease/assetstore/internal/usecase"
)

// Service is the asset store as seen by the HTTP layer.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	InsertAsset(context.Context, usecase.InsertAssetOption) (usecase.Asset, error)
	GetAssetByID(context.Context, uuid.UUID, usecase.GetAssetOption) (usecase.Asset, error)
	ListAssets(context.Context, usecase.ListAssetsOption) (usecase.CursorPage[usecase.Asset], error)
	ReadAsset(context.Context, usecase.Asset, usecase.ReadAssetOption) (usecase.AssetContent, error)
	DeleteAsset(context.Context, usecase.Asset) error

	GetWebsiteStorage(context.Context, uuid.UUID) (usecase.WebsiteStorage, error)
	GetTextIcon(ctx context.Context, text string, size int) ([]byte, error)
	RequestPurge(context.Context, usecase.PurgeAssetsOption) (usecase.PurgeResult, error)
}

type Server struct {
	server    Service
	verifier  TokenVerifier
	validator *validator.Validate
	logger    *slog.Logger
	cfg       config.Config
}

// NewServer wires the HTTP layer. verifier may be nil, in which case only
// internal clients can act for a user.
func NewServer(sv Service, verifier TokenVerifier, cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		server:    sv,
		verifier:  verifier,
		validator: validator.New(),
		logger:    logger,
		cfg:       cfg,
	}
}
