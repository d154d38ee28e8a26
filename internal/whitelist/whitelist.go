// Package whitelist decides which senders bypass contact extraction, such as
// the mailbox owner's own domain or internal colleagues.
package whitelist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker matches sender addresses against whitelisted domains and addresses
type Checker struct {
	domains   map[string]struct{}
	addresses map[string]struct{}
	logger    *zap.Logger
}

// NewChecker creates a new whitelist checker. Entries containing "@" match a
// single address; anything else matches a domain and all of its subdomains.
// A leading "@" or "*." is ignored.
func NewChecker(entries []string, logger *zap.Logger) *Checker {
	c := &Checker{
		domains:   make(map[string]struct{}),
		addresses: make(map[string]struct{}),
		logger:    logger,
	}

	for _, entry := range entries {
		entry = strings.ToLower(strings.TrimSpace(entry))
		entry = strings.TrimPrefix(entry, "*.")
		entry = strings.TrimPrefix(entry, "@")
		entry = strings.TrimSuffix(entry, ".")
		switch {
		case entry == "":
		case strings.Contains(entry, "@"):
			c.addresses[entry] = struct{}{}
		default:
			c.domains[entry] = struct{}{}
		}
	}

	if c.Len() > 0 && logger != nil {
		logger.Info("Initialized whitelist checker",
			zap.Int("domains", len(c.domains)),
			zap.Int("addresses", len(c.addresses)))
	}

	return c
}

// Len returns the number of whitelist entries
func (c *Checker) Len() int {
	return len(c.domains) + len(c.addresses)
}

// IsWhitelisted reports whether mail from the given address should be skipped
func (c *Checker) IsWhitelisted(from string) bool {
	if c.Len() == 0 {
		return false
	}

	from = strings.ToLower(strings.TrimSpace(from))
	at := strings.LastIndex(from, "@")
	if at <= 0 || at == len(from)-1 {
		return false
	}

	if _, ok := c.addresses[from]; ok {
		c.matched(from, from)
		return true
	}

	domain := from[at+1:]
	for {
		if _, ok := c.domains[domain]; ok {
			c.matched(from, domain)
			return true
		}
		dot := strings.IndexByte(domain, '.')
		if dot < 0 {
			return false
		}
		domain = domain[dot+1:]
	}
}

func (c *Checker) matched(from, entry string) {
	if c.logger != nil {
		c.logger.Debug("Sender is whitelisted",
			zap.String("email", from),
			zap.String("entry", entry))
	}
}
