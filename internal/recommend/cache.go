package recommend

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"mediaminder/internal/cachefile"
	"mediaminder/internal/logging"
)

// Snapshot is the persisted form of a computed recommendation list.
type Snapshot struct {
	ComputedAt time.Time        `json:"computed_at"`
	Items      []Recommendation `json:"items"`
}

// Cache holds the last computed list for a fixed TTL. When backed by a
// snapshot file the list survives process restarts.
type Cache struct {
	ttl    time.Duration
	now    func() time.Time
	file   *cachefile.File[Snapshot]
	logger *slog.Logger

	mu       sync.Mutex
	snapshot Snapshot
	present  bool
	loaded   bool
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheClock overrides the time source used for expiry.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache returns a Cache with the given TTL. file may be nil for a purely
// in-memory cache.
func NewCache(ttl time.Duration, file *cachefile.File[Snapshot], logger *slog.Logger, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &Cache{
		ttl:    ttl,
		now:    time.Now,
		file:   file,
		logger: logging.NewComponentLogger(logger, "recommend_cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached list when it is younger than the TTL.
func (c *Cache) Get(ctx context.Context) ([]Recommendation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadLocked(ctx)
	if !c.present {
		return nil, false
	}
	if c.now().Sub(c.snapshot.ComputedAt) >= c.ttl {
		return nil, false
	}
	return slices.Clone(c.snapshot.Items), true
}

// Put stores items stamped with the current time. Persistence failures are
// logged; the in-memory copy is still updated.
func (c *Cache) Put(ctx context.Context, items []Recommendation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = Snapshot{ComputedAt: c.now().UTC(), Items: slices.Clone(items)}
	c.present = true
	c.loaded = true
	if c.file == nil {
		return
	}
	if err := c.file.Save(ctx, c.snapshot); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "failed to persist recommendations", "recommend_cache_save_failed",
			logging.Error(err),
			logging.String("path", c.file.Path()),
			logging.String(logging.FieldErrorHint, "check permissions on the state directory"),
			logging.String(logging.FieldImpact, "recommendations are recomputed on the next run"),
		)
	}
}

// ComputedAt reports when the cached list was built.
func (c *Cache) ComputedAt(ctx context.Context) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked(ctx)
	return c.snapshot.ComputedAt, c.present
}

// Clear drops the cached list and its snapshot file.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = Snapshot{}
	c.present = false
	c.loaded = true
	if c.file == nil {
		return nil
	}
	return c.file.Remove(ctx)
}

func (c *Cache) loadLocked(ctx context.Context) {
	if c.loaded {
		return
	}
	c.loaded = true
	if c.file == nil {
		return
	}
	snapshot, ok, err := c.file.Load(ctx)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "failed to read recommendation snapshot", "recommend_cache_load_failed",
			logging.Error(err),
			logging.String("path", c.file.Path()),
			logging.String(logging.FieldImpact, "recommendations are recomputed"),
		)
		return
	}
	if !ok || snapshot.ComputedAt.IsZero() {
		return
	}
	c.snapshot = snapshot
	c.present = true
}
