package server

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/librarease/assetstore/internal/usecase"
)

type PurgeAssetsRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) PurgeUserAssets(ctx echo.Context) error {
	return s.purge(ctx, func(id uuid.UUID) usecase.PurgeAssetsOption {
		return usecase.PurgeAssetsOption{UserID: id}
	})
}

func (s *Server) PurgeWebsiteAssets(ctx echo.Context) error {
	return s.purge(ctx, func(id uuid.UUID) usecase.PurgeAssetsOption {
		return usecase.PurgeAssetsOption{WebsiteID: id}
	})
}

func (s *Server) purge(ctx echo.Context, owner func(uuid.UUID) usecase.PurgeAssetsOption) error {
	var req PurgeAssetsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}
	id, _ := uuid.Parse(req.ID)

	res, err := s.server.RequestPurge(ctx.Request().Context(), owner(id))
	if err != nil {
		return ctx.JSON(500, map[string]any{"error": "purge incomplete", "deleted": res.Deleted})
	}
	if res.Queued {
		return ctx.JSON(202, Res{Message: "purge queued"})
	}
	return ctx.JSON(200, Res{Data: map[string]int{"deleted": res.Deleted}})
}
