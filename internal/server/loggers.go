package server

import (
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var unloggedPaths = []string{
	"/api/health",
	"/favicon.ico",
}

func skipper(c echo.Context) bool {
	return slices.Contains(unloggedPaths, c.Request().URL.Path)
}

// NewEchoLogger logs one record per request. Blob reads carry the asset id
// and requested variant so cache behaviour can be followed per asset.
func NewEchoLogger(l *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper:          skipper,
		HandleError:      true, // let echo pick the status before it is logged
		LogStatus:        true,
		LogURIPath:       true,
		LogRoutePath:     true,
		LogMethod:        true,
		LogError:         true,
		LogLatency:       true,
		LogRequestID:     true,
		LogRemoteIP:      true,
		LogUserAgent:     true,
		LogContentLength: true,
		LogResponseSize:  true,
		LogQueryParams:   []string{"width", "height", "fill", "size"},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("request_id", v.RequestID),
				slog.String("method", v.Method),
				slog.String("path", v.URIPath),
				slog.String("route", v.RoutePath),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("user_agent", v.UserAgent),
				slog.String("bytes_in", v.ContentLength),
				slog.Int64("bytes_out", v.ResponseSize),
			}
			if uid := userIDFrom(c.Request().Context()); uid != uuid.Nil {
				attrs = append(attrs, slog.String("user_id", uid.String()))
			}
			if id := c.Param("id"); id != "" {
				attrs = append(attrs, slog.String("target_id", id))
			}
			for k, vals := range v.QueryParams {
				attrs = append(attrs, slog.String("query."+k, vals[0]))
			}
			if ct := c.Response().Header().Get(echo.HeaderContentType); ct != "" {
				attrs = append(attrs, slog.String("content_type", ct))
			}

			level, msg := slog.LevelInfo, "REQUEST"
			switch {
			case v.Error != nil:
				level, msg = slog.LevelError, "REQUEST_ERROR"
				attrs = append(attrs, slog.String("err", v.Error.Error()))
			case v.Status >= 500:
				level, msg = slog.LevelError, "REQUEST_ERROR"
			case v.Status >= 400:
				level = slog.LevelWarn
			}

			l.LogAttrs(c.Request().Context(), level, msg, attrs...)
			return nil
		},
	})
}
