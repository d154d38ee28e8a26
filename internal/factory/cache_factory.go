package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/pr-contact-miner/internal/adapters/cache"
	"github.com/mikey/pr-contact-miner/internal/config"
	"github.com/mikey/pr-contact-miner/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates website lookup caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateDomainCache creates a domain cache based on the configuration.
// Type "none" yields a nil cache.
func (f *CacheFactory) CreateDomainCache() (core.DomainCache, error) {
	cacheCfg := f.cfg.GetCache()

	switch cacheCfg.Type {
	case "none":
		return nil, nil
	case "memory":
		return cache.NewMemoryCache(f.logger, cacheCfg.MaxEntries, cacheCfg.CleanupFrequency), nil
	case "sqlite":
		if err := ensureDir(cacheCfg.SQLitePath); err != nil {
			return nil, err
		}
		return cache.NewSQLiteCache(cacheCfg.SQLitePath, f.logger, cacheCfg.CleanupFrequency)
	case "mysql":
		return cache.NewMySQLCache(cacheCfg.MySQLDSN, f.logger, cacheCfg.CleanupFrequency)
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return cache.NewRedisCache(ctx, cacheCfg.RedisURL, f.logger)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}

// GetCacheTTL returns how long website lookups stay cached
func (f *CacheFactory) GetCacheTTL() time.Duration {
	return f.cfg.GetCache().TTL
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return nil
}
