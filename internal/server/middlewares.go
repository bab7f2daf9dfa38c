package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/librarease/assetstore/internal/config"
)

// TokenVerifier turns a bearer ID token into a user id.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (uuid.UUID, error)
}

var errNoCredentials = errors.New("no credentials")

// getUID resolves the caller. Internal clients presenting the shared client
// id may act for the user named in X-User-Id; everyone else needs a bearer
// token.
func (s *Server) getUID(c echo.Context) (uuid.UUID, error) {
	req := c.Request()
	if s.trustedClient(req.Header.Get(config.HEADER_KEY_X_CLIENT_ID)) {
		return uuid.Parse(req.Header.Get(config.HEADER_KEY_X_USER_ID))
	}

	token, ok := strings.CutPrefix(req.Header.Get(echo.HeaderAuthorization), "Bearer ")
	if !ok || token == "" || s.verifier == nil {
		return uuid.Nil, errNoCredentials
	}
	return s.verifier.VerifyIDToken(req.Context(), token)
}

// RequireUser puts the authenticated user id in the request context.
func (s *Server) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, err := s.getUID(c)
		if err != nil || uid == uuid.Nil {
			s.logger.DebugContext(c.Request().Context(), "rejected user request", "path", c.Path(), "error", err)
			return c.JSON(401, map[string]string{"error": "UNAUTHORIZED"})
		}
		ctx := context.WithValue(c.Request().Context(), config.CTX_KEY_USER_ID, uid)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// RequireClient admits trusted internal callers only.
func (s *Server) RequireClient(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.trustedClient(c.Request().Header.Get(config.HEADER_KEY_X_CLIENT_ID)) {
			s.logger.WarnContext(c.Request().Context(), "rejected internal request", "path", c.Path(), "remote_ip", c.RealIP())
			return c.JSON(401, map[string]string{"error": "UNAUTHORIZED"})
		}
		return next(c)
	}
}

func (s *Server) trustedClient(got string) bool {
	return s.cfg.ClientID != "" && subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.ClientID)) == 1
}

func userIDFrom(ctx context.Context) uuid.UUID {
	uid, _ := ctx.Value(config.CTX_KEY_USER_ID).(uuid.UUID)
	return uid
}
