package identity

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// CacheConfig holds configuration options for the identity cache.
//
// # Security Considerations
//
// A cached identity may outlive a revoked token by up to TTL. Keep the TTL
// short; the default is five minutes.
type CacheConfig struct {
	// TTL is how long a verified identity is reused.
	//
	// Default: 5 minutes.
	TTL time.Duration

	// MaxEntries bounds the cache. The least recently used entry is evicted
	// when it is full.
	//
	// Default: 1000.
	MaxEntries int

	// CleanupInterval is how often expired entries are removed.
	//
	// Default: 1 minute.
	CleanupInterval time.Duration
}

// DefaultCacheConfig returns a CacheConfig with sensible defaults.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:             5 * time.Minute,
		MaxEntries:      1000,
		CleanupInterval: 1 * time.Minute,
	}
}

type cachedIdentity struct {
	identity Identity
	expiry   time.Time

	// lastAccessedNanos allows touch under the read lock.
	lastAccessedNanos atomic.Int64
}

func (c *cachedIdentity) isExpired(now time.Time) bool {
	return now.After(c.expiry)
}

func (c *cachedIdentity) touch(now time.Time) {
	c.lastAccessedNanos.Store(now.UnixNano())
}

func (c *cachedIdentity) lastAccessed() time.Time {
	return time.Unix(0, c.lastAccessedNanos.Load())
}

// cache is a TTL cache of verified identities keyed by token hash and
// account hint. Credentials themselves are never stored.
type cache struct {
	mu      sync.RWMutex
	entries map[string]*cachedIdentity

	config CacheConfig
	logger *slog.Logger
	group  singleflight.Group

	metrics MetricsRecorder

	stopCh chan struct{}
	wg     sync.WaitGroup
	closed bool

	now func() time.Time
}

func newCache(config CacheConfig, logger *slog.Logger, metrics MetricsRecorder, now func() time.Time) *cache {
	defaults := DefaultCacheConfig()
	if config.TTL <= 0 {
		config.TTL = defaults.TTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = defaults.MaxEntries
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}

	c := &cache{
		entries: make(map[string]*cachedIdentity),
		config:  config,
		logger:  logger,
		metrics: metrics,
		stopCh:  make(chan struct{}),
		now:     now,
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

func (c *cache) get(key string) (Identity, bool) {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return Identity{}, false
	}
	entry, ok := c.entries[key]
	if !ok || entry.isExpired(now) {
		return Identity{}, false
	}
	entry.touch(now)
	return entry.identity, true
}

func (c *cache) set(ctx context.Context, key string, id Identity) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if _, exists := c.entries[key]; !exists {
		c.evictIfNeededLocked()
	}

	entry := &cachedIdentity{identity: id, expiry: now.Add(c.config.TTL)}
	entry.touch(now)
	c.entries[key] = entry

	c.metrics.SetIdentityCacheSize(ctx, len(c.entries))
}

func (c *cache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *cache) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stopCh)
	c.wg.Wait()

	c.mu.Lock()
	c.entries = make(map[string]*cachedIdentity)
	c.mu.Unlock()
}

func (c *cache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *cache) cleanup() {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	expired := 0
	for key, entry := range c.entries {
		if entry.isExpired(now) {
			delete(c.entries, key)
			expired++
		}
	}

	if expired > 0 {
		c.metrics.SetIdentityCacheSize(context.Background(), len(c.entries))
		c.logger.Debug("Cleaned up expired identities",
			"expired_count", expired,
			"remaining", len(c.entries))
	}
}

// evictIfNeededLocked drops the least recently used entry when full.
// Must be called with c.mu held.
func (c *cache) evictIfNeededLocked() {
	if len(c.entries) < c.config.MaxEntries {
		return
	}

	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if last := entry.lastAccessed(); oldestKey == "" || last.Before(oldest) {
			oldestKey = key
			oldest = last
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
