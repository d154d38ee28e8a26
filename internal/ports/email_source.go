package ports

import (
	"context"

	"github.com/mikey/pr-contact-miner/internal/core"
)

// EmailHandler receives one normalized email. Returning an error stops the fetch.
type EmailHandler func(email *core.Email) error

// EmailSource defines the interface for mailbox readers
type EmailSource interface {
	// Fetch streams emails to fn in source order until the source is
	// exhausted, ctx is cancelled or fn returns an error
	Fetch(ctx context.Context, fn EmailHandler) error

	// Close releases the underlying mailbox
	Close() error
}
