package ports

import (
	"context"

	"github.com/mikey/pr-contact-miner/internal/core"
)

// EmailProcessor handles a single email delivered by an Ingestor
type EmailProcessor interface {
	ProcessEmail(ctx context.Context, email *core.Email) (*core.ExtractedContact, error)
}

// Ingestor defines the interface for services that receive mail as it arrives
type Ingestor interface {
	// Start starts the ingest service in the background
	Start() error

	// Stop stops the ingest service
	Stop() error
}
