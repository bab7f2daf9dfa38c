package usecase_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/librarease/assetstore/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTextIcon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.uc.GetTextIcon(ctx, "ab", 48)
	require.NoError(t, err)
	assert.NotEmpty(t, first)
	assert.Equal(t, int64(1), f.images.textIcons.Load())

	cached, err := os.ReadFile(f.storage.TextIconPath("AB", 48))
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	second, err := f.uc.GetTextIcon(ctx, "AB", 48)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), f.images.textIcons.Load())
}

func TestGetTextIconRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		text string
		size int
	}{
		{"", 32},
		{"ABC", 32},
		{"a-", 32},
		{"é", 32},
		{"AB", 0},
		{"AB", usecase.MaxTextIconSize + 1},
	}
	for _, tc := range cases {
		_, err := f.uc.GetTextIcon(ctx, tc.text, tc.size)
		assert.ErrorIs(t, err, usecase.ErrInvalidTextIcon, "%q %d", tc.text, tc.size)
	}
	assert.Zero(t, f.images.textIcons.Load())
}

func TestValidTextIcon(t *testing.T) {
	assert.True(t, usecase.ValidTextIcon("A", 1))
	assert.True(t, usecase.ValidTextIcon("z9", usecase.MaxTextIconSize))
	assert.False(t, usecase.ValidTextIcon("a b", 32))
}

func TestMirrorAsset(t *testing.T) {
	m := &fakeMirror{}
	f := newFixtureWith(t, nil, m, nil)
	ctx := context.Background()
	a := f.insert(t, uuid.New(), nil, "a.jpg", "image/jpeg", []byte("data"))

	require.NoError(t, f.uc.MirrorAsset(ctx, a.ID))
	key := "blobs/" + a.ID.String() + "/default.jpg"
	assert.Equal(t, f.storage.OriginalPath(a.ID, ".jpg"), m.puts[key])

	// Deleted assets are skipped.
	require.NoError(t, f.uc.MirrorAsset(ctx, uuid.New()))
}

func TestSweepStaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stale, err := f.storage.CreateStaging()
	require.NoError(t, err)
	require.NoError(t, stale.Close())
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale.Name(), past, past))

	n, err := f.uc.SweepStaging(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, stagingEntries(t, f))
}
