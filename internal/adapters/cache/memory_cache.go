package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mikey/pr-contact-miner/internal/core"
	"go.uber.org/zap"
)

// MemoryCache is an in-memory implementation of the DomainCache interface.
// It holds at most maxEntries domains; a full cache first drops expired
// entries and then the entry closest to expiry.
type MemoryCache struct {
	entries     map[string]*core.DomainCacheEntry
	mu          sync.RWMutex
	maxEntries  int
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewMemoryCache creates a new in-memory cache. A maxEntries of zero or
// less means unbounded.
func NewMemoryCache(logger *zap.Logger, maxEntries int, cleanupFreq time.Duration) *MemoryCache {
	cache := &MemoryCache{
		entries:     make(map[string]*core.DomainCacheEntry),
		maxEntries:  maxEntries,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go cache.startCleanupTask()
	}

	return cache
}

// Get retrieves a cached entry for a domain
func (c *MemoryCache) Get(ctx context.Context, domain string) (*core.DomainCacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[domain]
	if !ok {
		return nil, core.ErrNotFound
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, core.ErrExpired
	}

	copied := *entry
	return &copied, nil
}

// Set stores a cache entry
func (c *MemoryCache) Set(ctx context.Context, entry *core.DomainCacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[entry.Domain]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}

	copied := *entry
	c.entries[entry.Domain] = &copied
	return nil
}

// Delete removes a cache entry
func (c *MemoryCache) Delete(ctx context.Context, domain string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, domain)
	return nil
}

// Cleanup removes expired entries
func (c *MemoryCache) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiredCount := c.removeExpiredLocked(time.Now())

	c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", expiredCount))
	return nil
}

// Len returns the number of entries, expired or not
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) removeExpiredLocked(now time.Time) int {
	expiredCount := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			expiredCount++
		}
	}
	return expiredCount
}

func (c *MemoryCache) evictLocked() {
	if c.removeExpiredLocked(time.Now()) > 0 {
		return
	}

	var victim string
	var soonest time.Time
	for key, entry := range c.entries {
		if victim == "" || entry.ExpiresAt.Before(soonest) {
			victim, soonest = key, entry.ExpiresAt
		}
	}
	delete(c.entries, victim)
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MemoryCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task
func (c *MemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}
