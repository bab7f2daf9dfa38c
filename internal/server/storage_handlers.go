package server

import (
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type WebsiteStorage struct {
	Max            int64  `json:"max"`
	Used           int64  `json:"used"`
	Available      int64  `json:"available"`
	MaxHuman       string `json:"max_human"`
	UsedHuman      string `json:"used_human"`
	AvailableHuman string `json:"available_human"`
}

type GetWebsiteStorageRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) GetWebsiteStorage(ctx echo.Context) error {
	var req GetWebsiteStorageRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}
	id, _ := uuid.Parse(req.ID)

	st, err := s.server.GetWebsiteStorage(ctx.Request().Context(), id)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": "internal server error"})
	}

	return ctx.JSON(200, Res{Data: WebsiteStorage{
		Max:            st.Max,
		Used:           st.Used,
		Available:      st.Available,
		MaxHuman:       humanize.IBytes(uint64(max(st.Max, 0))),
		UsedHuman:      humanize.IBytes(uint64(max(st.Used, 0))),
		AvailableHuman: humanize.IBytes(uint64(max(st.Available, 0))),
	}})
}
