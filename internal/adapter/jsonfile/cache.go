package jsonfile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/couchcryptid/climate-percentiles/internal/observability"
)

// CachedStore wraps a Store and keeps the last artifact in memory until the
// file's modification time or size changes. Save replaces the file by rename,
// so every successful write invalidates the cache.
type CachedStore struct {
	inner   *Store
	metrics *observability.ServerMetrics

	mu      sync.Mutex
	data    []byte
	modTime time.Time
	size    int64
}

// NewCachedStore creates a cache decorator around a store.
func NewCachedStore(inner *Store, metrics *observability.ServerMetrics) *CachedStore {
	return &CachedStore{inner: inner, metrics: metrics}
}

// Load returns the cached artifact when the file is unchanged since the last read.
func (c *CachedStore) Load(ctx context.Context) ([]byte, error) {
	info, err := os.Stat(c.inner.Path())
	if errors.Is(err, fs.ErrNotExist) {
		c.reset()
		return nil, ErrNotFound
	}
	if err != nil {
		return c.inner.Load(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data != nil && info.ModTime().Equal(c.modTime) && info.Size() == c.size {
		c.metrics.CacheHits.Inc()
		return c.data, nil
	}

	data, err := c.inner.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.data, c.modTime, c.size = data, info.ModTime(), info.Size()
	return data, nil
}

func (c *CachedStore) reset() {
	c.mu.Lock()
	c.data = nil
	c.mu.Unlock()
}
