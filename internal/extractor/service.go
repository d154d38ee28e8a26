// Package extractor turns a single email into a contact record.
package extractor

import (
	"context"
	"strings"

	"github.com/mikey/pr-contact-miner/internal/company"
	"github.com/mikey/pr-contact-miner/internal/core"
	"github.com/mikey/pr-contact-miner/internal/country"
	"github.com/mikey/pr-contact-miner/internal/signature"
	"github.com/mikey/pr-contact-miner/internal/utils"
	"go.uber.org/zap"
)

// Service implements contact extraction for one email at a time
type Service struct {
	resolver   *company.Resolver
	detector   *country.Detector
	text       *utils.TextProcessor
	tryWebsite bool
	logger     *zap.Logger
}

// NewService creates a new extraction service
func NewService(
	resolver *company.Resolver,
	detector *country.Detector,
	text *utils.TextProcessor,
	tryWebsite bool,
	logger *zap.Logger,
) *Service {
	return &Service{
		resolver:   resolver,
		detector:   detector,
		text:       text,
		tryWebsite: tryWebsite,
		logger:     logger,
	}
}

// Extract mines the sender's details out of email. It never fails: fields
// without evidence are left empty.
func (s *Service) Extract(ctx context.Context, email *core.Email) *core.ExtractedContact {
	contact := &core.ExtractedContact{
		Name:  signature.CleanName(email.FromName),
		Email: strings.ToLower(strings.TrimSpace(email.From)),
	}

	var sig string
	if body := s.text.Normalize(email.Body); strings.TrimSpace(body) != "" {
		sig = signature.Locate(body)
		contact.Phone = signature.ExtractPhone(sig)
		contact.Title = signature.ExtractTitle(sig)
		contact.Company = signature.ExtractCompany(sig, contact.Name)
		contact.AdditionalEmails = signature.ExtractEmails(sig, contact.Email)
	}

	if contact.Company != "" {
		contact.CompanySource = core.CompanySourceSignature
	} else if res := s.resolver.Resolve(ctx, contact.Email, s.tryWebsite); res.Resolved() {
		contact.Company = res.Name
		contact.CompanySource = res.Source
	}

	contact.Domain = company.SecondLevelDomain(contact.Email)
	contact.Website = company.WebsiteURL(contact.Email)

	if c, ok := s.detector.Detect(contact.Phone, contact.Email, sig); ok {
		contact.Country = c.Country
		contact.CountryCode = c.Code
		contact.CountrySource = c.Source
	}

	s.logger.Debug("Extracted contact",
		zap.String("email_id", email.ID),
		zap.String("email", contact.Email),
		zap.String("company", contact.Company),
		zap.String("company_source", contact.CompanySource),
		zap.String("country_code", contact.CountryCode))

	return contact
}

// ProcessEmail extracts a contact without persisting it, for dry runs
func (s *Service) ProcessEmail(ctx context.Context, email *core.Email) (*core.ExtractedContact, error) {
	return s.Extract(ctx, email), nil
}
