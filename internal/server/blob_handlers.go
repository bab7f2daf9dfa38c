package server

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/librarease/assetstore/internal/usecase"
)

type GetBlobRequest struct {
	ID     string `param:"id"`
	Width  *int   `query:"width" validate:"omitempty,gte=1,lte=4096"`
	Height *int   `query:"height" validate:"omitempty,gte=1,lte=4096"`
	Fill   *bool  `query:"fill"`
}

// GetBlob serves the original bytes of an asset or a resized variant.
func (s *Server) GetBlob(ctx echo.Context) error {
	var req GetBlobRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.String(400, "BAD REQUEST")
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.String(400, "BAD REQUEST")
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		return ctx.String(404, "FILE NOT FOUND")
	}

	c := ctx.Request().Context()
	asset, err := s.server.GetAssetByID(c, id, usecase.GetAssetOption{})
	if err != nil {
		return ctx.String(404, "FILE NOT FOUND")
	}

	content, err := s.server.ReadAsset(c, asset, usecase.ReadAssetOption{
		Width:  req.Width,
		Height: req.Height,
		Fill:   req.Fill,
	})
	if err != nil {
		return ctx.String(403, "FORBIDDEN")
	}

	return sendInline(ctx, content.ContentType, content.FileName, content.Data)
}

func sendInline(ctx echo.Context, contentType, fileName string, data []byte) error {
	h := ctx.Response().Header()
	h.Set(echo.HeaderContentLength, strconv.Itoa(len(data)))
	h.Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", fileName))
	return ctx.Blob(200, contentType, data)
}
