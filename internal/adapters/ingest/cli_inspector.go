package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mikey/pr-contact-miner/internal/adapters/source"
	"github.com/mikey/pr-contact-miner/internal/core"
	"github.com/mikey/pr-contact-miner/internal/ports"
	"go.uber.org/zap"
)

// CLIInspector runs a single raw message through a processor and prints
// what was extracted
type CLIInspector struct {
	processor ports.EmailProcessor
	out       io.Writer
	logger    *zap.Logger
	verbose   bool
}

// NewCLIInspector creates a new CLI inspector writing to out
func NewCLIInspector(processor ports.EmailProcessor, out io.Writer, logger *zap.Logger, verbose bool) *CLIInspector {
	return &CLIInspector{
		processor: processor,
		out:       out,
		logger:    logger,
		verbose:   verbose,
	}
}

// Inspect reads one RFC 5322 message from r, processes it and prints a report
func (c *CLIInspector) Inspect(ctx context.Context, r io.Reader) (*core.ExtractedContact, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	email, err := source.ParseMessage(raw)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Inspecting email", zap.String("email_id", email.ID), zap.String("sender", email.From))

	fmt.Fprintf(c.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(c.out, "From: %s <%s>\n", email.FromName, email.From)
	fmt.Fprintf(c.out, "To: %s\n", email.To)
	fmt.Fprintf(c.out, "Subject: %s\n", email.Subject)
	fmt.Fprintf(c.out, "Body length: %d bytes\n", len(email.Body))
	if c.verbose {
		fmt.Fprintf(c.out, "\nBody:\n%s\n", email.Body)
	}

	start := time.Now()
	contact, err := c.processor.ProcessEmail(ctx, email)
	if err != nil {
		c.logger.Error("Failed to process email", zap.Error(err))
		return nil, err
	}

	fmt.Fprintf(c.out, "\n=== Contact ===\n")
	if contact == nil {
		fmt.Fprintf(c.out, "No contact extracted\n")
		return nil, nil
	}
	printField(c.out, "Name", contact.Name)
	printField(c.out, "Email", contact.Email)
	printField(c.out, "Title", contact.Title)
	printField(c.out, "Company", withSource(contact.Company, contact.CompanySource))
	printField(c.out, "Phone", contact.Phone)
	printField(c.out, "Country", withSource(contact.Country, contact.CountrySource))
	printField(c.out, "Domain", contact.Domain)
	printField(c.out, "Website", contact.Website)
	printField(c.out, "Other emails", strings.Join(contact.AdditionalEmails, ", "))
	fmt.Fprintf(c.out, "Processing time: %v\n", time.Since(start).Round(time.Millisecond))

	return contact, nil
}

func printField(w io.Writer, label, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(w, "%-13s %s\n", label+":", value)
}

func withSource(value, src string) string {
	if value == "" || src == "" {
		return value
	}
	return value + " (" + src + ")"
}
