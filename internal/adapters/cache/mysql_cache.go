package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/pr-contact-miner/internal/core"
	"go.uber.org/zap"
)

// mysqlTimeFormat is used for DATETIME columns, always in UTC
const mysqlTimeFormat = "2006-01-02 15:04:05"

// MySQLCache is a MySQL implementation of the DomainCache interface
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS domain_cache (
			domain VARCHAR(255) PRIMARY KEY,
			company VARCHAR(255) NOT NULL DEFAULT '',
			found BOOLEAN NOT NULL DEFAULT FALSE,
			fetched_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL,
			INDEX idx_domain_cache_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go cache.startCleanupTask()
	}

	return cache, nil
}

// Get retrieves a cached entry for a domain
func (c *MySQLCache) Get(ctx context.Context, domain string) (*core.DomainCacheEntry, error) {
	entry := core.DomainCacheEntry{Domain: domain}
	var fetchedAt, expiresAt string

	err := c.db.QueryRowContext(ctx, `
		SELECT company, found, fetched_at, expires_at
		FROM domain_cache
		WHERE domain = ?
	`, domain).Scan(&entry.Company, &entry.Found, &fetchedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry.FetchedAt, err = time.ParseInLocation(mysqlTimeFormat, fetchedAt, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fetched_at timestamp: %w", err)
	}

	entry.ExpiresAt, err = time.ParseInLocation(mysqlTimeFormat, expiresAt, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expires_at timestamp: %w", err)
	}

	if time.Now().After(entry.ExpiresAt) {
		return nil, core.ErrExpired
	}

	return &entry, nil
}

// Set stores a cache entry
func (c *MySQLCache) Set(ctx context.Context, entry *core.DomainCacheEntry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO domain_cache (domain, company, found, fetched_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			company = VALUES(company),
			found = VALUES(found),
			fetched_at = VALUES(fetched_at),
			expires_at = VALUES(expires_at)
	`, entry.Domain, entry.Company, entry.Found,
		entry.FetchedAt.UTC().Format(mysqlTimeFormat), entry.ExpiresAt.UTC().Format(mysqlTimeFormat))
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	return nil
}

// Delete removes a cache entry
func (c *MySQLCache) Delete(ctx context.Context, domain string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM domain_cache
		WHERE domain = ?
	`, domain)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}

	return nil
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM domain_cache
		WHERE expires_at <= ?
	`, time.Now().UTC().Format(mysqlTimeFormat))
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MySQLCache) startCleanupTask() {
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

// Stop stops the background cleanup task and closes the database connection
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
