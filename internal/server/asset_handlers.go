package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/librarease/assetstore/internal/usecase"
)

type Asset struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	WebsiteID   *string         `json:"website_id,omitempty"`
	FileName    string          `json:"file_name"`
	ContentType string          `json:"content_type"`
	ByteSize    int64           `json:"byte_size"`
	Digest      string          `json:"digest"`
	URL         string          `json:"url"`
	Colors      json.RawMessage `json:"colors,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

func assetFromUsecase(a usecase.Asset) Asset {
	var websiteID *string
	if a.WebsiteID != nil {
		w := a.WebsiteID.String()
		websiteID = &w
	}
	return Asset{
		ID:          a.ID.String(),
		UserID:      a.UserID.String(),
		WebsiteID:   websiteID,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		ByteSize:    a.ByteSize,
		Digest:      a.Digest,
		URL:         "/blobs/" + a.ID.String(),
		Colors:      a.Colors,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type UploadAssetRequest struct {
	WebsiteID string `query:"website_id" validate:"omitempty,uuid"`
}

// UploadAsset streams the "file" part straight into the usecase. The form is
// never parsed up front, so website_id must come as a query parameter or as
// a field placed before the file.
func (s *Server) UploadAsset(ctx echo.Context) error {
	var req UploadAssetRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}

	mr, err := ctx.Request().MultipartReader()
	if err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return ctx.JSON(422, map[string]string{"error": "file is required", "field": "file"})
		}
		if err != nil {
			return uploadReadError(ctx, err)
		}

		switch part.FormName() {
		case "website_id":
			b, err := io.ReadAll(io.LimitReader(part, 64))
			if err != nil {
				return uploadReadError(ctx, err)
			}
			req.WebsiteID = strings.TrimSpace(string(b))
		case "file":
			defer part.Close()
			return s.insertUpload(ctx, req, part)
		}
		part.Close()
	}
}

func (s *Server) insertUpload(ctx echo.Context, req UploadAssetRequest, part *multipart.Part) error {
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error(), "field": "website_id"})
	}
	if part.FileName() == "" {
		return ctx.JSON(422, map[string]string{"error": "file is required", "field": "file"})
	}

	var websiteID *uuid.UUID
	if req.WebsiteID != "" {
		id, _ := uuid.Parse(req.WebsiteID)
		websiteID = &id
	}

	asset, err := s.server.InsertAsset(ctx.Request().Context(), usecase.InsertAssetOption{
		UserID:      userIDFrom(ctx.Request().Context()),
		WebsiteID:   websiteID,
		FileName:    filepath.Base(part.FileName()),
		ContentType: part.Header.Get(echo.HeaderContentType),
		Reader:      part,
	})
	if err != nil {
		var fe *usecase.FieldError
		if errors.As(err, &fe) {
			return ctx.JSON(422, map[string]string{"error": fe.Message, "field": fe.Field, "code": fe.Code})
		}
		if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
			return uploadReadError(ctx, err)
		}
		return ctx.JSON(500, map[string]string{"error": "internal server error"})
	}

	return ctx.JSON(201, Res{Data: assetFromUsecase(asset)})
}

func uploadReadError(ctx echo.Context, err error) error {
	if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
		return ctx.JSON(413, map[string]string{"error": "file too large", "field": "file"})
	}
	return ctx.JSON(400, map[string]string{"error": err.Error()})
}

type ListAssetsRequest struct {
	WebsiteID string `query:"website_id" validate:"omitempty,uuid"`
	After     string `query:"after" validate:"omitempty,uuid"`
	First     int    `query:"first" validate:"omitempty,gte=1,lte=100"`
}

func (s *Server) ListAssets(ctx echo.Context) error {
	var req ListAssetsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	opt := usecase.ListAssetsOption{
		UserID: userIDFrom(ctx.Request().Context()),
		First:  req.First,
	}
	if req.WebsiteID != "" {
		opt.WebsiteID, _ = uuid.Parse(req.WebsiteID)
	}
	if req.After != "" {
		opt.After, _ = uuid.Parse(req.After)
	}

	page, err := s.server.ListAssets(ctx.Request().Context(), opt)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": "internal server error"})
	}

	list := make([]Asset, 0, len(page.Nodes))
	for _, a := range page.Nodes {
		list = append(list, assetFromUsecase(a))
	}

	var endCursor *string
	if page.EndCursor != nil {
		c := page.EndCursor.String()
		endCursor = &c
	}

	return ctx.JSON(200, Res{
		Data: list,
		Meta: &Meta{
			EndCursor:   endCursor,
			HasNextPage: page.HasNextPage,
		},
	})
}

type GetAssetByIDRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

// ownedAsset looks up an asset as the caller. Missing and foreign assets are
// both reported as 404. When ok is false the response has been written.
func (s *Server) ownedAsset(ctx echo.Context) (asset usecase.Asset, ok bool, err error) {
	var req GetAssetByIDRequest
	if err := ctx.Bind(&req); err != nil {
		return asset, false, ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return asset, false, ctx.JSON(422, map[string]string{"error": err.Error()})
	}
	id, _ := uuid.Parse(req.ID)

	asset, err = s.server.GetAssetByID(ctx.Request().Context(), id, usecase.GetAssetOption{
		UserID: userIDFrom(ctx.Request().Context()),
	})
	if errors.Is(err, usecase.ErrNotFound) {
		return asset, false, ctx.JSON(404, map[string]string{"error": "not found"})
	}
	if err != nil {
		return asset, false, ctx.JSON(500, map[string]string{"error": "internal server error"})
	}
	return asset, true, nil
}

func (s *Server) GetAssetByID(ctx echo.Context) error {
	asset, ok, err := s.ownedAsset(ctx)
	if !ok {
		return err
	}
	return ctx.JSON(200, Res{Data: assetFromUsecase(asset)})
}

func (s *Server) DeleteAsset(ctx echo.Context) error {
	asset, ok, err := s.ownedAsset(ctx)
	if !ok {
		return err
	}
	if err := s.server.DeleteAsset(ctx.Request().Context(), asset); err != nil {
		return ctx.JSON(500, map[string]string{"error": "internal server error"})
	}
	return ctx.NoContent(204)
}
