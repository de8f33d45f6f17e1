// Package embedcache memoizes text embeddings in a bounded LRU with an
// optional shared Redis tier.
package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/golang/groupcache/lru"

	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/common/metrics"
)

const DefaultCapacity = 1024

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is a second cache tier shared between processes. A miss is reported
// as (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vec []float32) error
}

// Cache is safe for concurrent use. Keys are the SHA-256 of the full text,
// so distinct texts never share an entry.
type Cache struct {
	mu       sync.Mutex
	lru      *lru.Cache
	embedder Embedder
	store    Store
	logger   logger.Logger
}

type Option func(*Cache)

// WithStore adds a shared tier consulted after the in-process LRU.
func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Cache) { c.logger = logger.Component(l, "embedcache") }
}

func New(embedder Embedder, capacity int, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{
		lru:      lru.New(capacity),
		embedder: embedder,
		logger:   logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the cache key for text.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// GetOrCompute returns the cached vector for text, calling the embedder on a
// miss. Embedder errors are returned and nothing is cached.
func (c *Cache) GetOrCompute(ctx context.Context, text string) ([]float32, error) {
	key := Key(text)

	if vec, ok := c.getLocal(key); ok {
		metrics.EmbedCacheLookups.WithLabelValues("memory", "hit").Inc()
		return vec, nil
	}

	if c.store != nil {
		vec, ok, err := c.store.Get(ctx, key)
		switch {
		case err != nil:
			c.logger.Warn("embedding store lookup failed", map[string]interface{}{"error": err.Error()})
			metrics.EmbedCacheLookups.WithLabelValues("store", "error").Inc()
		case ok:
			metrics.EmbedCacheLookups.WithLabelValues("store", "hit").Inc()
			c.addLocal(key, vec)
			return vec, nil
		default:
			metrics.EmbedCacheLookups.WithLabelValues("store", "miss").Inc()
		}
	}

	metrics.EmbedCacheLookups.WithLabelValues("memory", "miss").Inc()

	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.addLocal(key, vec)
	if c.store != nil {
		if err := c.store.Set(ctx, key, vec); err != nil {
			c.logger.Warn("embedding store write failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return vec, nil
}

// Len reports the number of in-process entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *Cache) getLocal(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]float32), true
}

func (c *Cache) addLocal(key string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, vec)
}
