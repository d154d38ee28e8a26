package factory

import (
	"fmt"

	"github.com/mikey/pr-contact-miner/internal/adapters/store"
	"github.com/mikey/pr-contact-miner/internal/config"
	"github.com/mikey/pr-contact-miner/internal/core"
	"go.uber.org/zap"
)

// StoreFactory creates contact stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateContactStore creates a contact store based on the configuration
func (f *StoreFactory) CreateContactStore() (core.ContactStore, error) {
	storeCfg := f.cfg.GetStore()

	switch storeCfg.Type {
	case "sqlite":
		if err := ensureDir(storeCfg.SQLitePath); err != nil {
			return nil, err
		}
		return store.NewSQLiteStore(storeCfg.SQLitePath, f.logger)
	case "memory":
		f.logger.Warn("Using in-memory contact store, results are discarded on exit")
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeCfg.Type)
	}
}
