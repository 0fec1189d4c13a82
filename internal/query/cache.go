package query

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/pharmadash/pharmadash/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// Cache de-duplicates and caches read queries by key. Identical keys within
// the staleness window reuse the cached value; identical keys in flight share
// one network call. Mutations never go through the cache; they call
// Invalidate with their key groups instead.
type Cache struct {
	staleness time.Duration
	snapshots *SnapshotStore // may be nil
	logger    *logger.Logger

	mu      sync.RWMutex
	entries map[string]entry

	group singleflight.Group
}

type entry struct {
	payload   []byte
	fetchedAt time.Time
}

// NewCache creates a query cache. snapshots may be nil to disable persistent
// fallback.
func NewCache(staleness time.Duration, snapshots *SnapshotStore, log *logger.Logger) *Cache {
	return &Cache{
		staleness: staleness,
		snapshots: snapshots,
		logger:    log.WithComponent("query"),
		entries:   make(map[string]entry),
	}
}

// Fetch runs a read query through the cache. The outcome is always a Result:
// live data on success, data from the staleness window on a fresh hit, or the
// last known good value (memory first, then persisted snapshot) with Err set
// when the fetch fails and a fallback exists. With no fallback the Result
// carries only the error.
func Fetch[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) Result[T] {
	if cached, ok := c.lookup(key); ok {
		var data T
		if err := json.Unmarshal(cached.payload, &data); err == nil {
			return Result[T]{Data: data, Source: SourceCached, FetchedAt: cached.fetchedAt}
		}
		// Undecodable cache entry: drop it and fetch live.
		c.Invalidate(key)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		data, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		payload, merr := json.Marshal(data)
		if merr != nil {
			return nil, merr
		}
		c.store(ctx, key, payload)
		return payload, nil
	})

	if err == nil {
		var data T
		payload := v.([]byte)
		if uerr := json.Unmarshal(payload, &data); uerr != nil {
			return Result[T]{Err: uerr}
		}
		return Result[T]{Data: data, Source: SourceLive, FetchedAt: time.Now()}
	}

	// Degrade: stale memory entry first, then the persisted snapshot.
	if stale, ok := c.lookupAny(key); ok {
		var data T
		if uerr := json.Unmarshal(stale.payload, &data); uerr == nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("fetch failed, serving stale cache")
			return Result[T]{Data: data, Source: SourceSnapshot, FetchedAt: stale.fetchedAt, Err: err}
		}
	}
	if c.snapshots != nil {
		if payload, fetchedAt, serr := c.snapshots.Get(ctx, key); serr == nil {
			var data T
			if uerr := json.Unmarshal(payload, &data); uerr == nil {
				c.logger.Warn().Err(err).Str("key", key).Msg("fetch failed, serving persisted snapshot")
				return Result[T]{Data: data, Source: SourceSnapshot, FetchedAt: fetchedAt, Err: err}
			}
		}
	}

	return Result[T]{Err: err}
}

// Invalidate removes entries whose key starts with any of the given prefixes
// and returns how many entries were dropped. Each entry is counted once even
// when several prefixes match it.
func (c *Cache) Invalidate(prefixes ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				delete(c.entries, key)
				removed++
				break
			}
		}
	}

	if removed > 0 {
		c.logger.Debug().Int("entries", removed).Strs("prefixes", prefixes).Msg("cache invalidated")
	}
	return removed
}

// lookup returns the entry for key when it is within the staleness window.
func (c *Cache) lookup(key string) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Since(e.fetchedAt) > c.staleness {
		return entry{}, false
	}
	return e, true
}

// lookupAny returns the entry for key regardless of age.
func (c *Cache) lookupAny(key string) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return e, ok
}

func (c *Cache) store(ctx context.Context, key string, payload []byte) {
	c.mu.Lock()
	c.entries[key] = entry{payload: payload, fetchedAt: time.Now()}
	c.mu.Unlock()

	if c.snapshots != nil {
		if err := c.snapshots.Put(ctx, key, payload); err != nil {
			c.logger.Error().Err(err).Str("key", key).Msg("failed to persist snapshot")
		}
	}
}
