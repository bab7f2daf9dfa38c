package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/time/rate"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(otelecho.Middleware(s.cfg.ServiceName, otelecho.WithSkipper(skipper)))
	e.Use(middleware.RequestID())
	e.Use(NewEchoLogger(s.logger))
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"https://*", "http://*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Accept",
			"Content-Type",
			echo.HeaderAuthorization,
		},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
		MaxAge:        300,
	}))

	e.GET("/api/health", s.healthHandler)

	var public []echo.MiddlewareFunc
	if s.cfg.PublicRateLimit > 0 {
		store := middleware.NewRateLimiterMemoryStore(rate.Limit(s.cfg.PublicRateLimit))
		public = append(public, middleware.RateLimiter(store))
	}
	e.GET("/blobs/:id", s.GetBlob, public...)
	e.GET("/text-icons/:text", s.GetTextIcon, public...)

	var upload []echo.MiddlewareFunc
	if s.cfg.MaxUploadSize > 0 {
		upload = append(upload, middleware.BodyLimit(strconv.FormatInt(s.cfg.MaxUploadSize, 10)))
	}

	var blobGroup = e.Group("/api/v1/blobs", s.RequireUser)
	blobGroup.POST("", s.UploadAsset, upload...)
	blobGroup.GET("", s.ListAssets)
	blobGroup.GET("/:id", s.GetAssetByID)
	blobGroup.DELETE("/:id", s.DeleteAsset)

	var websiteGroup = e.Group("/api/v1/websites", s.RequireUser)
	websiteGroup.GET("/:id/storage", s.GetWebsiteStorage)

	var internalGroup = e.Group("/internal", s.RequireClient)
	internalGroup.DELETE("/users/:id/blobs", s.PurgeUserAssets)
	internalGroup.DELETE("/websites/:id/blobs", s.PurgeWebsiteAssets)

	return e
}

func (s *Server) healthHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.server.Health())
}
