package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/librarease/assetstore/internal/usecase"
)

type GetTextIconRequest struct {
	Text string `param:"text"`
	Size *int   `query:"size"`
}

func (s *Server) GetTextIcon(ctx echo.Context) error {
	var req GetTextIconRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.String(400, "BAD REQUEST")
	}

	size := usecase.DefaultTextIconSize
	if req.Size != nil {
		size = *req.Size
	}
	if !usecase.ValidTextIcon(req.Text, size) {
		return ctx.String(400, "BAD REQUEST")
	}

	data, err := s.server.GetTextIcon(ctx.Request().Context(), req.Text, size)
	if errors.Is(err, usecase.ErrInvalidTextIcon) {
		return ctx.String(400, "BAD REQUEST")
	}
	if err != nil {
		return ctx.String(500, "INTERNAL SERVER ERROR")
	}

	name := fmt.Sprintf("text-icon-%s-%dx%d.png", strings.ToUpper(req.Text), size, size)
	return sendInline(ctx, "image/png", name, data)
}
