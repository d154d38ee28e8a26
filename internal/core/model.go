package core

import (
	"encoding/json"
	"time"
)

// Email is a normalized email record handed to the extraction pipeline
type Email struct {
	ID         string
	FromName   string
	From       string
	To         string
	Subject    string
	Body       string
	Snippet    string
	ReceivedAt time.Time
}

// Country detection sources
const (
	CountrySourcePhone     = "phone_code"
	CountrySourceTLD       = "tld"
	CountrySourceSignature = "signature"
)

// Company resolution sources
const (
	CompanySourceKnownDomain = "known_domain"
	CompanySourceWebsite     = "website"
	CompanySourceFormatted   = "domain_formatted"
	CompanySourceSignature   = "signature"
)

// CountryResult is the outcome of a successful country detection
type CountryResult struct {
	Country string
	Code    string
	Source  string
}

// CompanyResolution is the outcome of resolving an email domain to an organization.
// An empty Source means the domain could not be resolved.
type CompanyResolution struct {
	Name   string
	Source string
}

// Resolved reports whether a company name was found
func (r CompanyResolution) Resolved() bool {
	return r.Name != ""
}

// ExtractedContact holds everything the extractor learned about a sender.
// Empty strings mean "unknown" so stores can apply only-if-empty merges.
type ExtractedContact struct {
	Name             string
	Email            string
	Company          string
	CompanySource    string
	Title            string
	Phone            string
	Country          string
	CountryCode      string
	CountrySource    string
	Domain           string
	Website          string
	AdditionalEmails []string
}

// CategoryScore is a single category assignment with its confidence in [0,1]
type CategoryScore struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// CategorizationResult is the classification of one email
type CategorizationResult struct {
	Categories []CategoryScore
	Brands     []string
	Raw        json.RawMessage
}

// Empty reports whether the result carries no categories and no brands
func (r CategorizationResult) Empty() bool {
	return len(r.Categories) == 0 && len(r.Brands) == 0
}

// DomainCacheEntry is a cached website lookup for a single domain.
// Found is false for domains whose website yielded no name.
type DomainCacheEntry struct {
	Domain    string
	Company   string
	Found     bool
	FetchedAt time.Time
	ExpiresAt time.Time
}

// StoredContact is a contact as persisted by a ContactStore
type StoredContact struct {
	ID int64
	ExtractedContact
	Categories []CategoryScore
	Brands     []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RunStats summarizes a pipeline run
type RunStats struct {
	RunID            string
	Total            int
	Processed        int
	Skipped          int
	Filtered         int
	Errors           int
	Categorized      int
	CategoryFailures int
}
