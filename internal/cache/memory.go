package cache

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
)

// deadlineSize prefixes every entry with its expiry in unix nanoseconds.
const deadlineSize = 8

// Memory is a process local cache used when no redis is configured. Entries
// older than the life window are evicted in the background and the total
// size is capped, so unread keys do not accumulate.
type Memory struct {
	cache *bigcache.BigCache
	now   func() time.Time
}

// NewMemory keeps entries for at most lifeWindow and holds at most maxSizeMB
// megabytes. A zero maxSizeMB leaves the size uncapped.
func NewMemory(lifeWindow time.Duration, maxSizeMB int) (*Memory, error) {
	if lifeWindow <= 0 {
		lifeWindow = time.Hour
	}
	cfg := bigcache.DefaultConfig(lifeWindow)
	cfg.Shards = 64
	cfg.MaxEntriesInWindow = 1024
	cfg.MaxEntrySize = 512
	cfg.CleanWindow = max(lifeWindow/2, time.Second)
	cfg.HardMaxCacheSize = maxSizeMB
	cfg.Verbose = false

	c, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return &Memory{cache: c, now: time.Now}, nil
}

func (c *Memory) Get(_ context.Context, key string, v any) (bool, error) {
	b, err := c.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(b) < deadlineSize {
		c.cache.Delete(key)
		return false, nil
	}

	if deadline := int64(binary.BigEndian.Uint64(b)); deadline != 0 && c.now().UnixNano() >= deadline {
		c.cache.Delete(key)
		return false, nil
	}
	if err := json.Unmarshal(b[deadlineSize:], v); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores v under key. ttl shortens the life window for this entry; a
// zero ttl keeps it for the full window.
func (c *Memory) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var deadline int64
	if ttl > 0 {
		deadline = c.now().Add(ttl).UnixNano()
	}
	entry := make([]byte, deadlineSize+len(b))
	binary.BigEndian.PutUint64(entry, uint64(deadline))
	copy(entry[deadlineSize:], b)
	return c.cache.Set(key, entry)
}

func (c *Memory) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		if err := c.cache.Delete(k); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
			return err
		}
	}
	return nil
}

func (c *Memory) Len() int {
	return c.cache.Len()
}

func (c *Memory) Close() error {
	return c.cache.Close()
}
