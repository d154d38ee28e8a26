package company_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/pr-contact-miner/internal/company"
	"github.com/mikey/pr-contact-miner/internal/core"
	"go.uber.org/zap"
)

type fnFetcher func(ctx context.Context, domain string) (string, error)

func (f fnFetcher) FetchCompanyName(ctx context.Context, domain string) (string, error) {
	return f(ctx, domain)
}

type mapCache struct {
	entries map[string]*core.DomainCacheEntry
	sets    int
}

func (c *mapCache) Get(_ context.Context, domain string) (*core.DomainCacheEntry, error) {
	e, ok := c.entries[domain]
	if !ok {
		return nil, core.ErrNotFound
	}
	return e, nil
}

func (c *mapCache) Set(_ context.Context, entry *core.DomainCacheEntry) error {
	c.sets++
	c.entries[entry.Domain] = entry
	return nil
}

func (c *mapCache) Delete(_ context.Context, domain string) error {
	delete(c.entries, domain)
	return nil
}

func (c *mapCache) Cleanup(context.Context) error { return nil }

func newResolver(fetcher core.WebsiteFetcher, cache core.DomainCache) *company.Resolver {
	return company.NewResolver(fetcher, cache, time.Hour, 10, zap.NewNop())
}

func TestResolve_Deterministic(t *testing.T) {
	t.Parallel()

	r := newResolver(nil, nil)
	cases := []struct {
		email  string
		name   string
		source string
	}{
		{"lina@mena.bursonglobal.com", "Burson Global MENA", core.CompanySourceKnownDomain},
		{"sam@uk.bursonglobal.com", "Burson Global", core.CompanySourceKnownDomain},
		{"Ana@EDELMAN.com", "Edelman", core.CompanySourceKnownDomain},
		{"info@acmewidgets.io", "Acmewidgets", core.CompanySourceFormatted},
		{"pr@weber-shandwick-group.co.uk", "Weber Shandwick Group", core.CompanySourceFormatted},
		{"pr@my_company.com", "My Company", core.CompanySourceFormatted},
		{"hi@acme2go.com", "Acme2go", core.CompanySourceFormatted},
		{"someone@gmail.com", "", ""},
		{"someone@Hotmail.com", "", ""},
		{"user@mail.example", "", ""},
		{"not-an-email", "", ""},
		{"", "", ""},
		{"a@localhost", "", ""},
	}

	for _, tc := range cases {
		got := r.Resolve(context.Background(), tc.email, true)
		if got.Name != tc.name || got.Source != tc.source {
			t.Errorf("%q: expected (%q, %q), got (%q, %q)", tc.email, tc.name, tc.source, got.Name, got.Source)
		}
		if got.Resolved() != (tc.name != "") {
			t.Errorf("%q: Resolved() mismatch", tc.email)
		}
	}
}

func TestResolve_WebsiteLookupIsMemoized(t *testing.T) {
	t.Parallel()

	calls := 0
	fetcher := fnFetcher(func(_ context.Context, domain string) (string, error) {
		calls++
		if domain == "acmewidgets.io" {
			return "Acme Widgets", nil
		}
		return "", errors.New("connection refused")
	})
	r := newResolver(fetcher, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got := r.Resolve(ctx, "jo@acmewidgets.io", true)
		if got.Name != "Acme Widgets" || got.Source != core.CompanySourceWebsite {
			t.Fatalf("expected website result, got %+v", got)
		}
	}
	for i := 0; i < 2; i++ {
		got := r.Resolve(ctx, "jo@brokenwidgets.io", true)
		if got.Name != "Brokenwidgets" || got.Source != core.CompanySourceFormatted {
			t.Fatalf("expected formatted fallback, got %+v", got)
		}
	}
	if calls != 2 {
		t.Fatalf("expected one fetch per domain, got %d", calls)
	}
}

func TestResolve_WebsiteSkipped(t *testing.T) {
	t.Parallel()

	fetcher := fnFetcher(func(context.Context, string) (string, error) {
		t.Fatal("fetcher must not be called")
		return "", nil
	})
	r := newResolver(fetcher, nil)

	if got := r.Resolve(context.Background(), "jo@acmewidgets.io", false); got.Source != core.CompanySourceFormatted {
		t.Fatalf("expected formatted result, got %+v", got)
	}
	if got := r.Resolve(context.Background(), "jo@edelman.com", true); got.Source != core.CompanySourceKnownDomain {
		t.Fatalf("expected known domain before website, got %+v", got)
	}
}

func TestResolve_UsesDomainCache(t *testing.T) {
	t.Parallel()

	cache := &mapCache{entries: map[string]*core.DomainCacheEntry{
		"cachedco.com": {Domain: "cachedco.com", Company: "Cached Co", Found: true},
	}}
	calls := 0
	fetcher := fnFetcher(func(context.Context, string) (string, error) {
		calls++
		return "Fresh Co", nil
	})
	r := newResolver(fetcher, cache)
	ctx := context.Background()

	if got := r.Resolve(ctx, "a@cachedco.com", true); got.Name != "Cached Co" {
		t.Fatalf("expected cached name, got %+v", got)
	}
	if calls != 0 {
		t.Fatalf("expected no fetch on cache hit, got %d", calls)
	}

	if got := r.Resolve(ctx, "a@freshco.com", true); got.Name != "Fresh Co" {
		t.Fatalf("expected fetched name, got %+v", got)
	}
	entry, ok := cache.entries["freshco.com"]
	if !ok || !entry.Found || entry.Company != "Fresh Co" {
		t.Fatalf("expected fetched result to be cached, got %+v", entry)
	}
	if !entry.ExpiresAt.After(entry.FetchedAt) {
		t.Fatalf("expected expiry after fetch time, got %+v", entry)
	}
}

func TestSecondLevelDomain(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"john@pr.edelman.com":   "edelman.com",
		"jane@company.co.uk":    "company.co.uk",
		"dean@uni.ac.uk":        "uni.ac.uk",
		"ops@a.b.agency.com.sa": "agency.com.sa",
		"x@localhost":           "localhost",
		"JOHN@PR.EDELMAN.COM":   "edelman.com",
		"no-at-sign":            "",
		"":                      "",
	}
	for email, want := range cases {
		if got := company.SecondLevelDomain(email); got != want {
			t.Errorf("%q: expected %q, got %q", email, want, got)
		}
	}
}

func TestWebsiteURL(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"john@pr.edelman.com": "https://edelman.com",
		"jane@company.co.uk":  "https://company.co.uk",
		"user@gmail.com":      "",
		"broken":              "",
	}
	for email, want := range cases {
		if got := company.WebsiteURL(email); got != want {
			t.Errorf("%q: expected %q, got %q", email, want, got)
		}
	}
}

func TestLoadDomainsFile_Overrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "domains.yaml")
	body := "domains:\n  acmewidgets.io: ACME Widgets\n  edelman.com: Edelman Global\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write domains file: %v", err)
	}

	domains, err := company.LoadDomainsFile(path)
	if err != nil {
		t.Fatalf("LoadDomainsFile: %v", err)
	}

	r := newResolver(nil, nil)
	r.AddKnownDomains(domains)

	if got := r.Resolve(context.Background(), "a@acmewidgets.io", true); got.Name != "ACME Widgets" || got.Source != core.CompanySourceKnownDomain {
		t.Fatalf("expected file mapping, got %+v", got)
	}
	if got := r.Resolve(context.Background(), "a@edelman.com", true); got.Name != "Edelman Global" {
		t.Fatalf("expected override of built-in mapping, got %+v", got)
	}

	if _, err := company.LoadDomainsFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
