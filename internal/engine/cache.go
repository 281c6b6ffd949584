package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/singleflight"
)

type cacheEntry[V any] struct {
	value    V
	loadedAt time.Time
}

// Cache memoizes loads by key. Concurrent misses on one key share a single
// load. A zero TTL keeps entries until they are invalidated. Failed loads
// are not cached.
type Cache[V any] struct {
	load func(ctx context.Context, key string) (V, error)
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry[V]
	// gen changes on every invalidation so an in-flight load that started
	// before it does not store a stale value.
	gen   uint64
	group singleflight.Group
}

func NewCache[V any](ttl time.Duration, load func(ctx context.Context, key string) (V, error)) *Cache[V] {
	return &Cache[V]{
		load:    load,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry[V]),
	}
}

func (c *Cache[V]) Get(ctx context.Context, key string) (V, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && !c.expired(e) {
		return e.value, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		// Waiters share this load, so one caller's cancellation must not
		// fail the others.
		v, err := c.load(context.WithoutCancel(ctx), key)
		if err != nil {
			return v, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.entries[key] = cacheEntry[V]{value: v, loadedAt: c.now()}
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

func (c *Cache[V]) expired(e cacheEntry[V]) bool {
	return c.ttl > 0 && c.now().Sub(e.loadedAt) >= c.ttl
}

func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.gen++
	c.mu.Unlock()
	c.group.Forget(key)
}

func (c *Cache[V]) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry[V])
	c.gen++
	c.mu.Unlock()
}

// Len reports how many entries are held.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

const populationKey = "population"

// Repository serves datasets from the catalog through caches.
type Repository struct {
	catalog    Catalog
	topics     *Cache[*Dataset]
	indicators *Cache[*Table]
	population *Cache[*Table]

	// OnInvalidate runs after any invalidation, e.g. to reset held colors.
	OnInvalidate func()
}

func NewRepository(cat Catalog, ttl time.Duration) *Repository {
	return &Repository{
		catalog: cat,
		topics: NewCache(ttl, func(ctx context.Context, id string) (*Dataset, error) {
			return LoadTopic(ctx, cat, id)
		}),
		indicators: NewCache(ttl, func(_ context.Context, id string) (*Table, error) {
			return LoadIndicator(cat, id)
		}),
		population: NewCache(ttl, func(context.Context, string) (*Table, error) {
			return LoadPopulation(cat)
		}),
	}
}

func (r *Repository) Catalog() Catalog { return r.catalog }

func (r *Repository) Topic(ctx context.Context, id string) (*Dataset, error) {
	if _, ok := r.catalog.Topic(id); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, id)
	}
	return r.topics.Get(ctx, id)
}

func (r *Repository) Subtopic(ctx context.Context, topic, subtopic string) (*Table, error) {
	ds, err := r.Topic(ctx, topic)
	if err != nil {
		return nil, err
	}
	return ds.Table(subtopic)
}

func (r *Repository) Indicator(ctx context.Context, id string) (*Table, error) {
	if _, ok := r.catalog.Indicator(id); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndicator, id)
	}
	return r.indicators.Get(ctx, id)
}

func (r *Repository) Population(ctx context.Context) (*Table, error) {
	return r.population.Get(ctx, populationKey)
}

// Invalidate drops one cached topic.
func (r *Repository) Invalidate(topic string) {
	r.topics.Invalidate(topic)
	r.notify()
}

// InvalidateAll drops every cached dataset.
func (r *Repository) InvalidateAll() {
	r.topics.InvalidateAll()
	r.indicators.InvalidateAll()
	r.population.InvalidateAll()
	r.notify()
}

// InvalidatePath drops whatever was loaded from path. It reports whether
// the path belongs to the catalog.
func (r *Repository) InvalidatePath(path string) bool {
	path = filepath.Clean(path)
	hit := false
	for _, t := range r.catalog.Topics {
		for _, s := range t.Subtopics {
			if filepath.Clean(s.Path) == path {
				r.topics.Invalidate(t.ID)
				hit = true
			}
		}
	}
	for _, s := range r.catalog.Indicators {
		if filepath.Clean(s.Path) == path {
			r.indicators.Invalidate(s.ID)
			hit = true
		}
	}
	if r.catalog.Population != "" && filepath.Clean(r.catalog.Population) == path {
		r.population.Invalidate(populationKey)
		hit = true
	}
	if hit {
		r.notify()
	}
	return hit
}

func (r *Repository) notify() {
	if r.OnInvalidate != nil {
		r.OnInvalidate()
	}
}

// Watch invalidates cached data whenever a catalog file changes on disk. It
// blocks until ctx is done.
func (r *Repository) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files on save, so watch the directories.
	dirs := make(map[string]bool)
	for _, p := range r.catalog.Paths() {
		dirs[filepath.Dir(filepath.Clean(p))] = true
	}
	for d := range dirs {
		if err := watcher.Add(d); err != nil {
			log.Warnf("not watching %s: %v", d, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if r.InvalidatePath(event.Name) {
				log.Infof("dataset changed, cache invalidated: %s", event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("dataset watcher error: %v", err)
		}
	}
}
