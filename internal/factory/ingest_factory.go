package factory

import (
	"github.com/mikey/pr-contact-miner/internal/adapters/ingest"
	"github.com/mikey/pr-contact-miner/internal/config"
	"github.com/mikey/pr-contact-miner/internal/ports"
	"go.uber.org/zap"
)

// IngestFactory creates ingest services
type IngestFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewIngestFactory creates a new ingest factory
func NewIngestFactory(cfg *config.Config, logger *zap.Logger) *IngestFactory {
	return &IngestFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateIngestor creates an SMTP ingestor feeding processor
func (f *IngestFactory) CreateIngestor(processor ports.EmailProcessor) ports.Ingestor {
	ingestCfg := f.cfg.GetIngest()
	return ingest.NewSMTPIngestor(processor, ingest.Options{
		ListenAddr:     ingestCfg.ListenAddress,
		ProcessTimeout: ingestCfg.ProcessTimeout,
		MaxMessageSize: ingestCfg.MaxMessageBytes,
		RelayAddr:      ingestCfg.RelayAddress,
		ContactHeader:  ingestCfg.ContactHeader,
	}, f.logger)
}
