package company

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mikey/pr-contact-miner/internal/core"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const defaultMemoSize = 500

// Resolver turns email addresses into organization names
type Resolver struct {
	known    map[string]string
	fetcher  core.WebsiteFetcher
	cache    core.DomainCache
	cacheTTL time.Duration
	memo     *memo
	logger   *zap.Logger
}

// NewResolver creates a new company resolver. fetcher and cache may be nil;
// without a fetcher the website strategy is skipped.
func NewResolver(fetcher core.WebsiteFetcher, cache core.DomainCache, cacheTTL time.Duration, memoSize int, logger *zap.Logger) *Resolver {
	known := make(map[string]string, len(knownDomains))
	for d, name := range knownDomains {
		known[d] = name
	}

	return &Resolver{
		known:    known,
		fetcher:  fetcher,
		cache:    cache,
		cacheTTL: cacheTTL,
		memo:     newMemo(memoSize),
		logger:   logger,
	}
}

// AddKnownDomains registers extra domain mappings, overwriting existing ones.
// It must be called before the resolver is shared between goroutines.
func (r *Resolver) AddKnownDomains(domains map[string]string) {
	for d, name := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		name = strings.TrimSpace(name)
		if d == "" || name == "" {
			continue
		}
		r.known[d] = name
	}
}

// Resolve returns the company behind an email address. Personal mailbox
// providers and malformed addresses are left unresolved.
func (r *Resolver) Resolve(ctx context.Context, email string, tryWebsite bool) core.CompanyResolution {
	domain := domainOf(email)
	if domain == "" || IsPersonalDomain(domain) {
		return core.CompanyResolution{}
	}

	res, _ := core.FirstResolved(
		func() (core.CompanyResolution, bool) {
			return r.resolved(r.lookupKnown(domain), core.CompanySourceKnownDomain)
		},
		func() (core.CompanyResolution, bool) {
			if !tryWebsite || r.fetcher == nil {
				return core.CompanyResolution{}, false
			}
			return r.resolved(r.fromWebsite(ctx, domain), core.CompanySourceWebsite)
		},
		func() (core.CompanyResolution, bool) {
			return r.resolved(r.formatDomain(domain), core.CompanySourceFormatted)
		},
	)
	return res
}

func (r *Resolver) resolved(name, source string) (core.CompanyResolution, bool) {
	if name == "" {
		return core.CompanyResolution{}, false
	}
	return core.CompanyResolution{Name: name, Source: source}, true
}

// lookupKnown tries the exact domain, then each parent short of the bare TLD
func (r *Resolver) lookupKnown(domain string) string {
	if name, ok := r.known[domain]; ok {
		return name
	}

	parts := strings.Split(domain, ".")
	for i := 1; i < len(parts)-1; i++ {
		if name, ok := r.known[strings.Join(parts[i:], ".")]; ok {
			return name
		}
	}
	return ""
}

func (r *Resolver) fromWebsite(ctx context.Context, domain string) string {
	if name, ok := r.memo.get(domain); ok {
		return name
	}

	if r.cache != nil {
		entry, err := r.cache.Get(ctx, domain)
		switch {
		case err == nil && entry != nil:
			r.memo.put(domain, entry.Company)
			return entry.Company
		case err != nil && !errors.Is(err, core.ErrNotFound) && !errors.Is(err, core.ErrExpired):
			r.logger.Warn("Failed to read domain cache", zap.String("domain", domain), zap.Error(err))
		}
	}

	name, err := r.fetcher.FetchCompanyName(ctx, domain)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, core.ErrUnavailable) {
			return ""
		}
		r.logger.Debug("Website lookup failed", zap.String("domain", domain), zap.Error(err))
		name = ""
	}

	r.memo.put(domain, name)
	if r.cache != nil {
		now := time.Now()
		entry := &core.DomainCacheEntry{
			Domain:    domain,
			Company:   name,
			Found:     name != "",
			FetchedAt: now,
			ExpiresAt: now.Add(r.cacheTTL),
		}
		if err := r.cache.Set(ctx, entry); err != nil {
			r.logger.Warn("Failed to write domain cache", zap.String("domain", domain), zap.Error(err))
		}
	}
	return name
}

// formatDomain derives a readable name from the label before the TLD,
// e.g. weber-shandwick.com becomes "Weber Shandwick".
func (r *Resolver) formatDomain(domain string) string {
	parts := strings.Split(domain, ".")

	var label string
	switch {
	case len(parts) >= 3 && compoundCompanyLabels[parts[len(parts)-2]]:
		label = parts[len(parts)-3]
	case len(parts) >= 2:
		label = parts[len(parts)-2]
	default:
		return ""
	}

	if infraLabels[label] {
		return ""
	}

	label = strings.NewReplacer("-", " ", "_", " ").Replace(label)
	// Words follow Unicode segmentation, so acme2go stays one word: "Acme2go".
	formatted := strings.TrimSpace(cases.Title(language.Und).String(label))
	if len(formatted) < 2 {
		return ""
	}
	return formatted
}

// SecondLevelDomain returns the registrable part of an address used to group
// contacts, e.g. john@pr.edelman.com gives edelman.com and
// jane@company.co.uk gives company.co.uk.
func SecondLevelDomain(email string) string {
	domain := domainOf(email)
	if domain == "" {
		return ""
	}

	parts := strings.Split(domain, ".")
	if len(parts) < 2 {
		return domain
	}
	if len(parts) >= 3 && compoundSLDLabels[parts[len(parts)-2]] {
		return strings.Join(parts[len(parts)-3:], ".")
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

// WebsiteURL guesses the company homepage for an address.
// Personal mailbox providers have none.
func WebsiteURL(email string) string {
	domain := domainOf(email)
	if domain == "" || IsPersonalDomain(domain) {
		return ""
	}
	sld := SecondLevelDomain(email)
	if sld == "" {
		return ""
	}
	return "https://" + sld
}

// IsPersonalDomain reports whether domain belongs to a consumer mail provider
func IsPersonalDomain(domain string) bool {
	_, ok := personalDomains[strings.ToLower(domain)]
	return ok
}

func domainOf(email string) string {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at < 0 {
		return ""
	}
	domain := email[at+1:]
	if i := strings.Index(domain, "@"); i >= 0 {
		domain = domain[:i]
	}
	return strings.ToLower(domain)
}
