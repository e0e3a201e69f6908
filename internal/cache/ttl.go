package cache

import (
	"context"
	"sync"
	"time"
)

const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeError = "error"
)

// Observer receives one call per lookup.
type Observer interface {
	ObserveLookup(resource, outcome string)
}

// entry is replaced wholesale on refresh and never mutated in place.
type entry[T any] struct {
	Value     T
	FetchedAt time.Time
}

// TTLCache keeps one entry per key. A failed fetch leaves the previous entry
// in place.
type TTLCache[T any] struct {
	name     string
	mu       sync.RWMutex
	entries  map[string]entry[T]
	now      func() time.Time
	observer Observer
}

func New[T any](name string, observer Observer) *TTLCache[T] {
	return &TTLCache[T]{
		name:     name,
		entries:  make(map[string]entry[T]),
		now:      time.Now,
		observer: observer,
	}
}

// WithClock replaces the wall clock, for tests.
func (c *TTLCache[T]) WithClock(now func() time.Time) *TTLCache[T] {
	c.now = now
	return c
}

// Get returns the entry for key when it is younger than maxAge and force is
// false; otherwise it calls fetch and stores the result.
func (c *TTLCache[T]) Get(
	ctx context.Context,
	key string,
	maxAge time.Duration,
	fetch func(context.Context) (T, error),
	force bool,
) (T, error) {
	if !force {
		if v, ok := c.fresh(key, maxAge); ok {
			c.observe(OutcomeHit)
			return v, nil
		}
	}

	v, err := fetch(ctx)
	if err != nil {
		c.observe(OutcomeError)
		var zero T
		return zero, err
	}

	c.mu.Lock()
	c.entries[key] = entry[T]{Value: v, FetchedAt: c.now()}
	c.mu.Unlock()

	c.observe(OutcomeMiss)
	return v, nil
}

// peek returns the stored entry regardless of age.
func (c *TTLCache[T]) peek(key string) (entry[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Invalidate drops one key; the next Get for it fetches.
func (c *TTLCache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *TTLCache[T]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[T])
	c.mu.Unlock()
}

func (c *TTLCache[T]) fresh(key string, maxAge time.Duration) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.FetchedAt) >= maxAge {
		var zero T
		return zero, false
	}
	return e.Value, true
}

func (c *TTLCache[T]) observe(outcome string) {
	if c.observer != nil {
		c.observer.ObserveLookup(c.name, outcome)
	}
}
