package firebase

import (
	"context"
	"errors"
	"fmt"

	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// ClaimKey is the custom claim carrying the librarease user.
const ClaimKey = "librarease"

var ErrMissingUserClaim = errors.New("token has no librarease user id")

type Firebase struct {
	auth *auth.Client
}

// New opens the firebase auth client with the service account at path.
func New(ctx context.Context, path string) (*Firebase, error) {
	app, err := fb.NewApp(ctx, nil, option.WithCredentialsFile(path))
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting auth client: %w", err)
	}
	return &Firebase{auth: client}, nil
}

// VerifyIDToken checks the token signature and expiry and returns the user
// id from its custom claims.
func (f *Firebase) VerifyIDToken(ctx context.Context, token string) (uuid.UUID, error) {
	t, err := f.auth.VerifyIDToken(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	return UserIDFromClaims(t.Claims)
}

// UserIDFromClaims reads {"librarease": {"id": "<uuid>"}}.
func UserIDFromClaims(claims map[string]any) (uuid.UUID, error) {
	c, ok := claims[ClaimKey].(map[string]any)
	if !ok {
		return uuid.Nil, ErrMissingUserClaim
	}
	raw, ok := c["id"].(string)
	if !ok {
		return uuid.Nil, ErrMissingUserClaim
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrMissingUserClaim
	}
	return id, nil
}
