// Package cache holds short-lived results keyed by normalized topic.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key normalizes a topic for lookup: trimmed and lowercased.
func Key(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}

type entry[V any] struct {
	value   V
	created time.Time
}

// Cache maps topic keys to values that expire ttl after creation. Expired
// entries are dropped when read; nothing is evicted proactively.
type Cache[V any] struct {
	ttl         time.Duration
	now         func() time.Time
	coalesce    bool
	loadTimeout time.Duration

	mu      sync.Mutex
	entries map[string]entry[V]
	group   singleflight.Group
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now         func() time.Time
	coalesce    bool
	loadTimeout time.Duration
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithCoalescing makes concurrent misses for the same key share one load.
func WithCoalescing(on bool) Option {
	return func(o *options) { o.coalesce = on }
}

// WithLoadTimeout bounds a coalesced load. Zero leaves it unbounded.
func WithLoadTimeout(d time.Duration) Option {
	return func(o *options) { o.loadTimeout = d }
}

// New creates an empty cache.
func New[V any](ttl time.Duration, opts ...Option) *Cache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{
		ttl:         ttl,
		now:         o.now,
		coalesce:    o.coalesce,
		loadTimeout: o.loadTimeout,
		entries:     make(map[string]entry[V]),
	}
}

// Get returns the live value for topic.
func (c *Cache[V]) Get(topic string) (V, bool) {
	key := Key(topic)
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(e.created) >= c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores v for topic, stamped with the current time.
func (c *Cache[V]) Set(topic string, v V) {
	c.mu.Lock()
	c.entries[Key(topic)] = entry[V]{value: v, created: c.now()}
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrLoad returns the cached value for topic or calls load and caches its
// result. Failed loads are not cached. hit reports whether the value came
// from the cache.
//
// With coalescing, the shared load runs detached from any single caller's
// cancellation, bounded by the load timeout; a caller whose ctx ends stops
// waiting without affecting the others.
func (c *Cache[V]) GetOrLoad(ctx context.Context, topic string, load func(context.Context) (V, error)) (v V, hit bool, err error) {
	if v, ok := c.Get(topic); ok {
		return v, true, nil
	}
	if err := ctx.Err(); err != nil {
		return v, false, err
	}

	fill := func(ctx context.Context) (V, error) {
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		c.Set(topic, v)
		return v, nil
	}

	if !c.coalesce {
		v, err = fill(ctx)
		return v, false, err
	}

	ch := c.group.DoChan(Key(topic), func() (any, error) {
		// A concurrent flight may have filled the entry while we waited.
		if v, ok := c.Get(topic); ok {
			return v, nil
		}
		shared := context.WithoutCancel(ctx)
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			shared, cancel = context.WithTimeout(shared, c.loadTimeout)
			defer cancel()
		}
		return fill(shared)
	})

	select {
	case <-ctx.Done():
		var zero V
		return zero, false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			var zero V
			return zero, false, r.Err
		}
		v, _ = r.Val.(V)
		return v, false, nil
	}
}
