package rules

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes one loaded Set per process. Concurrent first loads are
// collapsed into a single read of the source.
type Cache struct {
	src    Source
	logger *zap.Logger
	group  singleflight.Group

	mu  sync.RWMutex
	set *Set
	gen uint64 // bumped by Clear; a load started before a Clear is not stored
}

// NewCache creates a cache over src.
func NewCache(src Source, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{src: src, logger: logger}
}

// SourceName reports where the cache loads rules from.
func (c *Cache) SourceName() string {
	return c.src.Name()
}

// Get returns the cached Set, loading it on first use.
func (c *Cache) Get(ctx context.Context) (*Set, error) {
	c.mu.RLock()
	if c.set != nil {
		set := c.set
		c.mu.RUnlock()
		return set, nil
	}
	c.mu.RUnlock()

	v, err, shared := c.group.Do("rules", func() (any, error) {
		c.mu.RLock()
		if c.set != nil {
			set := c.set
			c.mu.RUnlock()
			return set, nil
		}
		gen := c.gen
		c.mu.RUnlock()

		start := time.Now()
		// One caller's cancellation must not fail the load for the others
		set, err := Load(context.WithoutCancel(ctx), c.src)
		if err != nil {
			c.logger.Error("loading rules failed", zap.String("source", c.src.Name()), zap.Error(err))
			return nil, err
		}

		c.mu.Lock()
		stale := c.gen != gen
		if !stale {
			c.set = set
		}
		c.mu.Unlock()
		if stale {
			c.logger.Debug("discarding rules loaded before a clear", zap.String("source", set.Source))
			return set, nil
		}

		c.logger.Info("rules loaded",
			zap.String("source", set.Source),
			zap.Any("versions", set.Versions()),
			zap.Duration("duration", time.Since(start)),
		)
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("rules load shared between callers")
	}
	return v.(*Set), nil
}

// Clear drops the cached Set so the next Get reloads it.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.set = nil
	c.gen++
	c.mu.Unlock()
	c.group.Forget("rules")
}

// Reload clears the cache and loads the rules again.
func (c *Cache) Reload(ctx context.Context) (*Set, error) {
	c.Clear()
	return c.Get(ctx)
}
