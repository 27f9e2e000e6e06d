package wpblog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eringen/wpblog/wp"
)

// PostSource is the read side of the WordPress client.
type PostSource interface {
	ListPosts(ctx context.Context, limit int) ([]wp.Post, error)
	ListPostsPage(ctx context.Context, page, perPage int, opts wp.ListOptions) (wp.Page, error)
	GetPostBySlug(ctx context.Context, slug string) (wp.Post, error)
	GetPostByID(ctx context.Context, id int) (wp.Post, error)
}

// defaultMaxEntries bounds the cache. Search terms are part of the key, so
// without a bound every distinct query would add an entry.
const defaultMaxEntries = 512

// PostCache is an in-memory TTL cache in front of a PostSource. A zero TTL
// disables caching and every call goes to the source. Errors, not-found
// included, are never cached. When full, the oldest entry is evicted.
type PostCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	src        PostSource
}

type cacheEntry struct {
	value   interface{}
	fetched time.Time
}

// NewPostCache creates a PostCache backed by src.
func NewPostCache(src PostSource, ttl time.Duration) *PostCache {
	return &PostCache{
		src:        src,
		ttl:        ttl,
		maxEntries: defaultMaxEntries,
		entries:    make(map[string]cacheEntry),
	}
}

func (c *PostCache) valid(e cacheEntry) bool {
	return time.Since(e.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Len returns the number of live entries.
func (c *PostCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if c.valid(e) {
			n++
		}
	}
	return n
}

// TTL returns the configured lifetime of an entry.
func (c *PostCache) TTL() time.Duration { return c.ttl }

// cached returns the live entry for key or calls load and stores its
// result.
func cached[T any](c *PostCache, key string, load func() (T, error)) (T, error) {
	if c.ttl <= 0 {
		return load()
	}
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.valid(e) {
		if v, ok := e.value.(T); ok {
			return v, nil
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	c.mu.Lock()
	c.prune()
	if _, ok := c.entries[key]; !ok {
		for len(c.entries) >= c.maxEntries && len(c.entries) > 0 {
			c.evictOldest()
		}
	}
	c.entries[key] = cacheEntry{value: v, fetched: time.Now()}
	c.mu.Unlock()
	return v, nil
}

// prune drops expired entries. Callers hold the write lock.
func (c *PostCache) prune() {
	for k, e := range c.entries {
		if !c.valid(e) {
			delete(c.entries, k)
		}
	}
}

// evictOldest drops the entry fetched longest ago. Callers hold the write
// lock.
func (c *PostCache) evictOldest() {
	var oldest string
	var at time.Time
	for k, e := range c.entries {
		if oldest == "" || e.fetched.Before(at) {
			oldest, at = k, e.fetched
		}
	}
	delete(c.entries, oldest)
}

// ListPosts returns up to limit recent posts.
func (c *PostCache) ListPosts(ctx context.Context, limit int) ([]wp.Post, error) {
	return cached(c, fmt.Sprintf("list:%d", limit), func() ([]wp.Post, error) {
		return c.src.ListPosts(ctx, limit)
	})
}

// ListPostsPage returns one page of the listing.
func (c *PostCache) ListPostsPage(ctx context.Context, page, perPage int, opts wp.ListOptions) (wp.Page, error) {
	key := fmt.Sprintf("page:%d:%d:%s", page, perPage, opts.Search)
	return cached(c, key, func() (wp.Page, error) {
		return c.src.ListPostsPage(ctx, page, perPage, opts)
	})
}

// GetPostBySlug returns a single post by slug.
func (c *PostCache) GetPostBySlug(ctx context.Context, slug string) (wp.Post, error) {
	return cached(c, "slug:"+slug, func() (wp.Post, error) {
		return c.src.GetPostBySlug(ctx, slug)
	})
}

// GetPostByID returns a single post by WordPress ID.
func (c *PostCache) GetPostByID(ctx context.Context, id int) (wp.Post, error) {
	return cached(c, fmt.Sprintf("id:%d", id), func() (wp.Post, error) {
		return c.src.GetPostByID(ctx, id)
	})
}
