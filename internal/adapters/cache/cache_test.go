package cache_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/pr-contact-miner/internal/adapters/cache"
	"github.com/mikey/pr-contact-miner/internal/core"
	"go.uber.org/zap"
)

func entry(domain, company string, ttl time.Duration) *core.DomainCacheEntry {
	now := time.Now()
	return &core.DomainCacheEntry{
		Domain:    domain,
		Company:   company,
		Found:     company != "",
		FetchedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// exerciseDomainCache runs the behaviour every DomainCache must share
func exerciseDomainCache(t *testing.T, c core.DomainCache) {
	t.Helper()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := c.Set(ctx, entry("acme.com", "Acme Corporation", time.Hour)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := c.Get(ctx, "acme.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Company != "Acme Corporation" || !got.Found || got.Domain != "acme.com" {
		t.Fatalf("unexpected entry %+v", got)
	}

	if err := c.Set(ctx, entry("empty.io", "", time.Hour)); err != nil {
		t.Fatalf("set negative failed: %v", err)
	}
	neg, err := c.Get(ctx, "empty.io")
	if err != nil || neg.Found || neg.Company != "" {
		t.Fatalf("expected cached negative result, got %+v (%v)", neg, err)
	}

	if err := c.Set(ctx, entry("old.com", "Old", -time.Hour)); err != nil {
		t.Fatalf("set expired failed: %v", err)
	}
	if _, err := c.Get(ctx, "old.com"); !errors.Is(err, core.ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if err := c.Cleanup(ctx); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if _, err := c.Get(ctx, "old.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected expired entry to be cleaned up, got %v", err)
	}

	if err := c.Delete(ctx, "acme.com"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "acme.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected deleted entry to be gone, got %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	t.Parallel()

	c := cache.NewMemoryCache(zap.NewNop(), 0, 0)
	defer c.Stop()
	exerciseDomainCache(t, c)
}

func TestMemoryCache_Bounded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemoryCache(zap.NewNop(), 2, 0)
	defer c.Stop()

	_ = c.Set(ctx, entry("a.com", "A", time.Minute))
	_ = c.Set(ctx, entry("b.com", "B", time.Hour))
	_ = c.Set(ctx, entry("a.com", "A2", time.Minute))
	if c.Len() != 2 {
		t.Fatalf("overwrite must not evict, got %d entries", c.Len())
	}

	_ = c.Set(ctx, entry("c.com", "C", time.Hour))
	if c.Len() != 2 {
		t.Fatalf("expected cap of 2, got %d", c.Len())
	}
	if _, err := c.Get(ctx, "a.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected the soonest expiring entry to be evicted, got %v", err)
	}
	if _, err := c.Get(ctx, "c.com"); err != nil {
		t.Fatalf("expected new entry to be kept: %v", err)
	}
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemoryCache(zap.NewNop(), 0, 0)
	defer c.Stop()

	e := entry("acme.com", "Acme", time.Hour)
	_ = c.Set(ctx, e)
	e.Company = "mutated"

	got, _ := c.Get(ctx, "acme.com")
	got.Company = "also mutated"
	again, _ := c.Get(ctx, "acme.com")
	if again.Company != "Acme" {
		t.Fatalf("cache entry was shared with callers: %q", again.Company)
	}
}

func TestSQLiteCache(t *testing.T) {
	t.Parallel()

	c, err := cache.NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop(), 0)
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	defer c.Stop()
	exerciseDomainCache(t, c)
}
