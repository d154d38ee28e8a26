package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mikey/pr-contact-miner/internal/core"
	"github.com/mikey/pr-contact-miner/internal/signature"
)

var exportHeader = []string{
	"Name", "Email", "Company", "Company Source", "Title", "Phone",
	"Country", "Country Code", "Domain", "Website", "Other Emails",
	"Categories", "Brands", "Updated",
}

// ExportCSV writes every stored contact to w as CSV and returns the number
// of rows written. Categories carry their confidence, e.g. "Technology (0.90)".
func ExportCSV(ctx context.Context, store core.ContactStore, w io.Writer) (int, error) {
	contacts, err := store.ListContacts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list contacts: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, c := range contacts {
		if err := cw.Write(exportRow(c)); err != nil {
			return 0, fmt.Errorf("failed to write contact %d: %w", c.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush csv: %w", err)
	}
	return len(contacts), nil
}

func exportRow(c *core.StoredContact) []string {
	categories := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		categories[i] = cat.Name + " (" + strconv.FormatFloat(cat.Confidence, 'f', 2, 64) + ")"
	}

	var updated string
	if !c.UpdatedAt.IsZero() {
		updated = c.UpdatedAt.UTC().Format(time.DateOnly)
	}

	return []string{
		c.Name,
		c.Email,
		c.Company,
		c.CompanySource,
		c.Title,
		signature.FormatPhone(c.Phone),
		c.Country,
		c.CountryCode,
		c.Domain,
		c.Website,
		strings.Join(c.AdditionalEmails, "; "),
		strings.Join(categories, "; "),
		strings.Join(c.Brands, "; "),
		updated,
	}
}
