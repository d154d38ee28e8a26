package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mikey/pr-contact-miner/internal/core"
)

// MemoryStore is an in-memory implementation of the ContactStore interface,
// used for dry runs and tests
type MemoryStore struct {
	mu        sync.RWMutex
	nextID    int64
	byEmail   map[string]int64
	contacts  map[int64]*core.StoredContact
	mentions  map[int64]map[string]int
	processed map[string]int64
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byEmail:   make(map[string]int64),
		contacts:  make(map[int64]*core.StoredContact),
		mentions:  make(map[int64]map[string]int),
		processed: make(map[string]int64),
	}
}

// UpsertContact creates the contact or fills its empty fields, returning its id
func (s *MemoryStore) UpsertContact(ctx context.Context, contact *core.ExtractedContact) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(contact.Email))
	if email == "" {
		return 0, ErrMissingEmail
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if id, ok := s.byEmail[email]; ok {
		stored := s.contacts[id]
		mergeEmpty(&stored.ExtractedContact, contact)
		stored.UpdatedAt = now
		return id, nil
	}

	s.nextID++
	stored := &core.StoredContact{
		ID:        s.nextID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	stored.ExtractedContact = *contact
	stored.Email = email
	stored.AdditionalEmails = nil
	s.contacts[stored.ID] = stored
	s.byEmail[email] = stored.ID
	return stored.ID, nil
}

// mergeEmpty copies fields of src into dst where dst is empty. Company and
// country travel with their sources.
func mergeEmpty(dst *core.ExtractedContact, src *core.ExtractedContact) {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&dst.Name, src.Name)
	fill(&dst.Title, src.Title)
	fill(&dst.Phone, src.Phone)
	fill(&dst.Domain, src.Domain)
	fill(&dst.Website, src.Website)
	if dst.Company == "" {
		dst.Company, dst.CompanySource = src.Company, src.CompanySource
	}
	if dst.Country == "" {
		dst.Country, dst.CountryCode, dst.CountrySource = src.Country, src.CountryCode, src.CountrySource
	}
}

// AddEmail links a secondary address to a contact
func (s *MemoryStore) AddEmail(ctx context.Context, contactID int64, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.contacts[contactID]
	if c == nil || strings.EqualFold(c.Email, email) {
		return nil
	}
	for _, existing := range c.AdditionalEmails {
		if existing == email {
			return nil
		}
	}
	c.AdditionalEmails = append(c.AdditionalEmails, email)
	return nil
}

// AddCategory links a category to a contact, keeping the highest confidence seen
func (s *MemoryStore) AddCategory(ctx context.Context, contactID int64, category core.CategoryScore) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.contacts[contactID]
	if c == nil {
		return nil
	}
	for i, existing := range c.Categories {
		if existing.Name == category.Name {
			c.Categories[i].Confidence = max(existing.Confidence, category.Confidence)
			return nil
		}
	}
	c.Categories = append(c.Categories, category)
	return nil
}

// AddBrand links a brand to a contact, counting repeated mentions
func (s *MemoryStore) AddBrand(ctx context.Context, contactID int64, brand string) error {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.contacts[contactID] == nil {
		return nil
	}
	if s.mentions[contactID] == nil {
		s.mentions[contactID] = make(map[string]int)
	}
	s.mentions[contactID][brand]++
	return nil
}

// MentionCount returns how often brand was attached to a contact
func (s *MemoryStore) MentionCount(contactID int64, brand string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mentions[contactID][brand]
}

// MarkProcessed records that an email was handled
func (s *MemoryStore) MarkProcessed(ctx context.Context, email *core.Email, contactID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.processed[email.ID]; !ok {
		s.processed[email.ID] = contactID
	}
	return nil
}

// IsProcessed reports whether an email id was already recorded
func (s *MemoryStore) IsProcessed(ctx context.Context, emailID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.processed[emailID]
	return ok, nil
}

// ListContacts returns copies of every contact ordered by name
func (s *MemoryStore) ListContacts(ctx context.Context) ([]*core.StoredContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.StoredContact, 0, len(s.contacts))
	for id, c := range s.contacts {
		copied := *c
		copied.AdditionalEmails = append([]string(nil), c.AdditionalEmails...)
		copied.Categories = append([]core.CategoryScore(nil), c.Categories...)
		sort.Slice(copied.Categories, func(i, j int) bool {
			a, b := copied.Categories[i], copied.Categories[j]
			if a.Confidence != b.Confidence {
				return a.Confidence > b.Confidence
			}
			return a.Name < b.Name
		})
		copied.Brands = sortedBrands(s.mentions[id])
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

func sortedBrands(mentions map[string]int) []string {
	if len(mentions) == 0 {
		return nil
	}
	brands := make([]string, 0, len(mentions))
	for b := range mentions {
		brands = append(brands, b)
	}
	sort.Slice(brands, func(i, j int) bool {
		if mentions[brands[i]] != mentions[brands[j]] {
			return mentions[brands[i]] > mentions[brands[j]]
		}
		return brands[i] < brands[j]
	})
	return brands
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
