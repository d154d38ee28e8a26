package core

import (
	"context"
)

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	// Complete sends a prompt and returns the raw text of the model's reply
	Complete(ctx context.Context, prompt string) (string, error)
}

// Classifier categorizes a batch of emails in a single call.
// Implementations return one result per email, in order; a short slice is
// padded by the caller.
type Classifier interface {
	ClassifyBatch(ctx context.Context, emails []*Email) ([]CategorizationResult, error)
}

// WebsiteFetcher looks up an organization name from a domain's website
type WebsiteFetcher interface {
	// FetchCompanyName returns "" with a nil error when the site had no usable name
	FetchCompanyName(ctx context.Context, domain string) (string, error)
}

// DomainCache defines the interface for caching website lookups per domain
type DomainCache interface {
	// Get retrieves a cached entry for a domain
	Get(ctx context.Context, domain string) (*DomainCacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *DomainCacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, domain string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// ContactStore persists extracted contacts.
// UpsertContact only fills fields that are currently empty.
type ContactStore interface {
	UpsertContact(ctx context.Context, contact *ExtractedContact) (int64, error)
	AddEmail(ctx context.Context, contactID int64, email string) error
	AddCategory(ctx context.Context, contactID int64, category CategoryScore) error
	AddBrand(ctx context.Context, contactID int64, brand string) error
	MarkProcessed(ctx context.Context, email *Email, contactID int64) error
	IsProcessed(ctx context.Context, emailID string) (bool, error)
	ListContacts(ctx context.Context) ([]*StoredContact, error)
	Close() error
}
