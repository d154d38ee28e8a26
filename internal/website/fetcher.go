package website

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mikey/pr-contact-miner/internal/core"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"
)

const (
	// DefaultUserAgent identifies the crawler to the sites it visits
	DefaultUserAgent = "Mozilla/5.0 (compatible; PRContactsBot/1.0)"
	// DefaultTimeout bounds a single page fetch
	DefaultTimeout = 10 * time.Second
	// DefaultMaxBodyBytes caps how much of a page is read
	DefaultMaxBodyBytes = 1 << 20
)

var errNoPage = errors.New("no page could be fetched")

// HTTPFetcher looks up organization names from company homepages
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	schemes      []string
	cb           *gobreaker.CircuitBreaker
	logger       *zap.Logger
}

// NewHTTPFetcher creates a new website fetcher
func NewHTTPFetcher(timeout time.Duration, userAgent string, maxBodyBytes int64, logger *zap.Logger) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}

	cbSettings := gobreaker.Settings{
		Name:        "website-fetch",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &HTTPFetcher{
		client:       &http.Client{Timeout: timeout},
		userAgent:    userAgent,
		maxBodyBytes: maxBodyBytes,
		schemes:      []string{"https", "http"},
		cb:           gobreaker.NewCircuitBreaker(cbSettings),
		logger:       logger,
	}
}

// FetchCompanyName fetches the homepage of domain and extracts the site name.
// When the exact host has no usable page its registrable domain is tried.
// A domain without a usable name yields "" and a nil error.
func (f *HTTPFetcher) FetchCompanyName(ctx context.Context, domain string) (string, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return "", nil
	}

	hosts := []string{domain}
	if parent := registrableDomain(domain); parent != "" && parent != domain {
		hosts = append(hosts, parent)
	}

	result, err := f.cb.Execute(func() (interface{}, error) {
		return f.fetchHosts(ctx, hosts)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("website lookup for %s: %w", domain, core.ErrUnavailable)
		}
		if errors.Is(err, errNoPage) {
			return "", nil
		}
		return "", err
	}

	name, _ := result.(string)
	return name, nil
}

// fetchHosts returns errNoPage only when every request failed at the
// transport level, which is what the breaker counts.
func (f *HTTPFetcher) fetchHosts(ctx context.Context, hosts []string) (string, error) {
	reached := false
	for _, host := range hosts {
		for _, scheme := range f.schemes {
			if err := ctx.Err(); err != nil {
				return "", err
			}

			url := scheme + "://" + host
			page, err := f.get(ctx, url)
			if err != nil {
				f.logger.Debug("Failed to fetch website", zap.String("url", url), zap.Error(err))
				continue
			}
			reached = true

			if name, ok := ExtractOrganizationName(page); ok {
				f.logger.Debug("Found organization name on website",
					zap.String("url", url),
					zap.String("name", name))
				return name, nil
			}
		}
	}

	if !reached {
		return "", errNoPage
	}
	return "", nil
}

// registrableDomain returns the eTLD+1 of a host name. Addresses and
// host:port pairs have none.
func registrableDomain(host string) string {
	if strings.Contains(host, ":") || net.ParseIP(host) != nil {
		return ""
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return etld1
}

func (f *HTTPFetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("failed to detect charset: %w", err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(data), nil
}
