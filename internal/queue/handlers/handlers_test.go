package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarease/assetstore/internal/usecase"
)

type fakeUsecase struct {
	mirrored []uuid.UUID
	purged   []usecase.PurgeAssetsOption
	maxAges  []time.Duration
	err      error
}

func (f *fakeUsecase) MirrorAsset(_ context.Context, id uuid.UUID) error {
	f.mirrored = append(f.mirrored, id)
	return f.err
}

func (f *fakeUsecase) PurgeAssets(_ context.Context, opt usecase.PurgeAssetsOption) (int, error) {
	f.purged = append(f.purged, opt)
	return 3, f.err
}

func (f *fakeUsecase) SweepStaging(_ context.Context, maxAge time.Duration) (int, error) {
	f.maxAges = append(f.maxAges, maxAge)
	return 0, f.err
}

func task(t *testing.T, typ string, v any) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return asynq.NewTask(typ, b)
}

func TestHandleMirrorAsset(t *testing.T) {
	uc := &fakeUsecase{}
	h := NewHandlers(uc, nil)
	id := uuid.New()

	err := h.HandleMirrorAsset(context.Background(), task(t, TypeMirrorAsset, MirrorAssetPayload{AssetID: id}))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, uc.mirrored)
}

func TestHandleMirrorAssetBadPayload(t *testing.T) {
	h := NewHandlers(&fakeUsecase{}, nil)

	err := h.HandleMirrorAsset(context.Background(), asynq.NewTask(TypeMirrorAsset, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleMirrorAssetRetriesOnFailure(t *testing.T) {
	boom := errors.New("boom")
	h := NewHandlers(&fakeUsecase{err: boom}, nil)

	err := h.HandleMirrorAsset(context.Background(), task(t, TypeMirrorAsset, MirrorAssetPayload{AssetID: uuid.New()}))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandlePurgeAssets(t *testing.T) {
	uc := &fakeUsecase{}
	h := NewHandlers(uc, nil)
	websiteID := uuid.New()

	err := h.HandlePurgeAssets(context.Background(), task(t, TypePurgeAssets, PurgeAssetsPayload{WebsiteID: websiteID}))
	require.NoError(t, err)
	require.Len(t, uc.purged, 1)
	assert.Equal(t, websiteID, uc.purged[0].WebsiteID)
	assert.Equal(t, uuid.Nil, uc.purged[0].UserID)
}

func TestHandlePurgeAssetsNeedsSingleOwner(t *testing.T) {
	uc := &fakeUsecase{}
	h := NewHandlers(uc, nil)

	err := h.HandlePurgeAssets(context.Background(), task(t, TypePurgeAssets, PurgeAssetsPayload{}))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = h.HandlePurgeAssets(context.Background(), task(t, TypePurgeAssets, PurgeAssetsPayload{UserID: uuid.New(), WebsiteID: uuid.New()}))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, uc.purged)
}

func TestHandleSweepStaging(t *testing.T) {
	uc := &fakeUsecase{}
	h := NewHandlers(uc, nil)

	require.NoError(t, h.HandleSweepStaging(context.Background(), asynq.NewTask(TypeSweepStaging, nil)))
	require.NoError(t, h.HandleSweepStaging(context.Background(), task(t, TypeSweepStaging, SweepStagingPayload{MaxAge: time.Hour})))
	assert.Equal(t, []time.Duration{0, time.Hour}, uc.maxAges)
}
