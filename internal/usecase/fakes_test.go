package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/librarease/assetstore/internal/cache"
	"github.com/librarease/assetstore/internal/config"
	"github.com/librarease/assetstore/internal/filestorage"
	"github.com/librarease/assetstore/internal/imageops"
	"github.com/librarease/assetstore/internal/usecase"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu        sync.Mutex
	assets    map[uuid.UUID]usecase.Asset
	clock     time.Time
	failIDs   map[uuid.UUID]bool
	createErr error

	getDelay time.Duration
	inflight atomic.Int64
	peak     atomic.Int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		assets:  make(map[uuid.UUID]usecase.Asset),
		clock:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		failIDs: make(map[uuid.UUID]bool),
	}
}

func (r *memRepo) Health() map[string]string { return map[string]string{"status": "up"} }
func (r *memRepo) Close() error              { return nil }

func (r *memRepo) CreateAsset(_ context.Context, a usecase.Asset) (usecase.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return usecase.Asset{}, r.createErr
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		r.clock = r.clock.Add(time.Second)
		a.CreatedAt = r.clock
	}
	a.UpdatedAt = a.CreatedAt
	r.assets[a.ID] = a
	return a, nil
}

func (r *memRepo) GetAssetByID(_ context.Context, id uuid.UUID) (usecase.Asset, error) {
	n := r.inflight.Add(1)
	defer r.inflight.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(r.getDelay)

	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[id]
	if !ok {
		return usecase.Asset{}, usecase.ErrNotFound
	}
	return a, nil
}

func sameWebsite(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *memRepo) FindDuplicateAsset(_ context.Context, opt usecase.DuplicateAssetOption) (usecase.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.sorted(false) {
		if a.UserID == opt.UserID && sameWebsite(a.WebsiteID, opt.WebsiteID) &&
			a.ContentType == opt.ContentType && a.ByteSize == opt.ByteSize && a.Digest == opt.Digest {
			return a, nil
		}
	}
	return usecase.Asset{}, usecase.ErrNotFound
}

// sorted returns assets by (created_at, id), newest first when desc.
func (r *memRepo) sorted(desc bool) []usecase.Asset {
	list := make([]usecase.Asset, 0, len(r.assets))
	for _, a := range r.assets {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		less := a.CreatedAt.Before(b.CreatedAt) ||
			(a.CreatedAt.Equal(b.CreatedAt) && bytes.Compare(a.ID[:], b.ID[:]) < 0)
		if desc {
			return !less
		}
		return less
	})
	return list
}

func matchFilter(a usecase.Asset, opt usecase.ListAssetsOption) bool {
	if opt.UserID != uuid.Nil && a.UserID != opt.UserID {
		return false
	}
	if opt.WebsiteID != uuid.Nil && (a.WebsiteID == nil || *a.WebsiteID != opt.WebsiteID) {
		return false
	}
	return true
}

func (r *memRepo) ListAssets(_ context.Context, opt usecase.ListAssetsOption, cursor *usecase.Asset, limit int) ([]usecase.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []usecase.Asset
	for _, a := range r.sorted(true) {
		if !matchFilter(a, opt) {
			continue
		}
		if cursor != nil {
			before := a.CreatedAt.Before(cursor.CreatedAt) ||
				(a.CreatedAt.Equal(cursor.CreatedAt) && bytes.Compare(a.ID[:], cursor.ID[:]) < 0)
			if !before {
				continue
			}
		}
		out = append(out, a)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memRepo) FindAssets(_ context.Context, opt usecase.ListAssetsOption) ([]usecase.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []usecase.Asset
	for _, a := range r.sorted(true) {
		if matchFilter(a, opt) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memRepo) DeleteAsset(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failIDs[id] {
		return errors.New("delete failed")
	}
	delete(r.assets, id)
	return nil
}

func (r *memRepo) SumAssetSize(_ context.Context, websiteID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, a := range r.assets {
		if a.WebsiteID != nil && *a.WebsiteID == websiteID {
			total += a.ByteSize
		}
	}
	return total, nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.assets)
}

type countingImages struct {
	*imageops.Processor
	variants  atomic.Int64
	textIcons atomic.Int64
}

func (c *countingImages) Variant(dst io.Writer, src io.Reader, opt imageops.VariantOption) error {
	c.variants.Add(1)
	return c.Processor.Variant(dst, src, opt)
}

func (c *countingImages) TextIcon(dst io.Writer, text string, size int) error {
	c.textIcons.Add(1)
	return c.Processor.TextIcon(dst, text, size)
}

type fakeQueue struct {
	mu      sync.Mutex
	mirrors []uuid.UUID
	purges  []usecase.PurgeAssetsOption
}

func (q *fakeQueue) EnqueueMirrorAsset(_ context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.mirrors = append(q.mirrors, id)
	return nil
}

func (q *fakeQueue) EnqueuePurgeAssets(_ context.Context, opt usecase.PurgeAssetsOption) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.purges = append(q.purges, opt)
	return nil
}

type fakeMirror struct {
	mu      sync.Mutex
	puts    map[string]string
	removed []string
}

func (m *fakeMirror) Put(_ context.Context, key, path, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.puts == nil {
		m.puts = make(map[string]string)
	}
	m.puts[key] = path
	return nil
}

func (m *fakeMirror) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, key)
	return nil
}

type failingCommit struct {
	*filestorage.Local
}

func (failingCommit) Commit(string, uuid.UUID, string) error {
	return errors.New("disk full")
}

type fixture struct {
	uc      usecase.Usecase
	repo    *memRepo
	storage *filestorage.Local
	images  *countingImages
	cache   *cache.Memory
}

type fixtureOption func(*config.Config)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	return newFixtureWith(t, nil, nil, nil, opts...)
}

func newFixtureWith(t *testing.T, wrap func(*filestorage.Local) usecase.Storage, mirror usecase.Mirror, queue usecase.Queue, opts ...fixtureOption) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.StoragePath = t.TempDir()
	for _, o := range opts {
		o(&cfg)
	}

	local, err := filestorage.NewLocal(cfg.StoragePath)
	require.NoError(t, err)
	var storage usecase.Storage = local
	if wrap != nil {
		storage = wrap(local)
	}

	p, err := imageops.New(cfg.ImageFilter, cfg.JPEGQuality, "")
	require.NoError(t, err)
	images := &countingImages{Processor: p}

	repo := newMemRepo()
	c, err := cache.NewMemory(cfg.AssetCacheTTL, cfg.MemoryCacheMaxSize)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return &fixture{
		uc:      usecase.New(cfg, repo, storage, c, images, mirror, queue, nil),
		repo:    repo,
		storage: local,
		images:  images,
		cache:   c,
	}
}

func pngBytes(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (f *fixture) insert(t *testing.T, user uuid.UUID, website *uuid.UUID, name, contentType string, data []byte) usecase.Asset {
	t.Helper()
	a, err := f.uc.InsertAsset(context.Background(), usecase.InsertAssetOption{
		UserID:      user,
		WebsiteID:   website,
		FileName:    name,
		ContentType: contentType,
		Reader:      bytes.NewReader(data),
	})
	require.NoError(t, err)
	return a
}
