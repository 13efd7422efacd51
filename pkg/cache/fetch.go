package cache

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the value for one key.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// FetchCache caches fetched values for DefaultTTL and coalesces concurrent
// misses: for a given key at most one FetchFunc runs at a time, and every
// caller that arrives while it runs receives its result or error.
// Failures are never cached.
type FetchCache[T any] struct {
	store    *Store[T]
	group    singleflight.Group
	clock    Clock
	observer Observer
}

// NewFetchCache creates an empty FetchCache.
func NewFetchCache[T any](opts ...Option) *FetchCache[T] {
	cfg := &Config{
		Clock:    SystemClock,
		Observer: NoopObserver{},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &FetchCache[T]{
		store:    NewStore[T](DefaultTTL, cfg.Clock),
		clock:    cfg.Clock,
		observer: cfg.Observer,
	}
}

// Get returns the cached value for key if it is within TTL. A stale entry is evicted.
func (c *FetchCache[T]) Get(key string) (T, bool) {
	return c.store.Get(key)
}

// GetOrFetch returns the cached value for key, joins an in-flight fetch for
// key, or starts fn.
//
// fn runs detached from ctx cancellation: a caller that gives up gets
// ctx.Err(), while the fetch still completes and fills the cache.
func (c *FetchCache[T]) GetOrFetch(ctx context.Context, key string, fn FetchFunc[T]) (T, error) {
	if v, ok := c.store.Get(key); ok {
		c.observer.CacheHit(key)
		return v, nil
	}
	c.observer.CacheMiss(key)

	fetchCtx := context.WithoutCancel(ctx)
	leader := false
	ch := c.group.DoChan(key, func() (any, error) {
		leader = true
		// A fetch that settled after our miss check has already stored the value.
		if v, ok := c.store.Get(key); ok {
			return v, nil
		}
		start := c.clock.Now()
		v, err := fn(fetchCtx)
		c.observer.FetchDone(key, c.clock.Now().Sub(start), err)
		if err != nil {
			return nil, err
		}
		c.store.Set(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		// Shared is also set for the caller whose closure ran.
		if res.Shared && !leader {
			c.observer.FetchCoalesced(key)
		}
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Sweep evicts expired entries.
func (c *FetchCache[T]) Sweep() int {
	return c.store.Sweep()
}

// Len returns the number of stored entries.
func (c *FetchCache[T]) Len() int {
	return c.store.Len()
}
