package country

import (
	"sort"
	"strings"

	"github.com/mikey/pr-contact-miner/internal/core"
)

type prefixEntry struct {
	prefix  string
	country country
}

// byLengthDesc flattens a lookup table into prefixes ordered longest-first.
// Ties are broken alphabetically so detection is deterministic.
func byLengthDesc(table map[string]country) []prefixEntry {
	entries := make([]prefixEntry, 0, len(table))
	for p, c := range table {
		entries = append(entries, prefixEntry{prefix: p, country: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].prefix) != len(entries[j].prefix) {
			return len(entries[i].prefix) > len(entries[j].prefix)
		}
		return entries[i].prefix < entries[j].prefix
	})
	return entries
}

var (
	sortedPhoneCodes = byLengthDesc(phoneCodes)
	sortedTLDs       = byLengthDesc(tldCountries)

	phoneStripper = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

// Detector infers a contact's country from phone, signature and email domain
type Detector struct{}

// NewDetector creates a new country detector
func NewDetector() *Detector {
	return &Detector{}
}

// Detect tries the phone number, then signature locations, then the email TLD.
// The first strategy that matches wins.
func (d *Detector) Detect(phone, email, signature string) (core.CountryResult, bool) {
	return core.FirstResolved(
		func() (core.CountryResult, bool) { return d.DetectFromPhone(phone) },
		func() (core.CountryResult, bool) { return d.DetectFromSignature(signature) },
		func() (core.CountryResult, bool) { return d.DetectFromEmailTLD(email) },
	)
}

// DetectFromPhone matches the international calling code of a phone number.
// Numbers without a "+" or "00" prefix are not attributed to any country.
func (d *Detector) DetectFromPhone(phone string) (core.CountryResult, bool) {
	if phone == "" {
		return core.CountryResult{}, false
	}

	cleaned := phoneStripper.Replace(phone)
	if strings.HasPrefix(cleaned, "00") {
		cleaned = "+" + cleaned[2:]
	}
	if !strings.HasPrefix(cleaned, "+") {
		return core.CountryResult{}, false
	}

	for _, e := range sortedPhoneCodes {
		if strings.HasPrefix(cleaned, e.prefix) {
			return result(e.country, core.CountrySourcePhone), true
		}
	}
	return core.CountryResult{}, false
}

// DetectFromSignature looks for well-known city and country names
func (d *Detector) DetectFromSignature(signature string) (core.CountryResult, bool) {
	if signature == "" {
		return core.CountryResult{}, false
	}

	for _, lp := range locationPatterns {
		if lp.re.MatchString(signature) {
			return result(lp.country, core.CountrySourceSignature), true
		}
	}
	return core.CountryResult{}, false
}

// DetectFromEmailTLD maps the country-code TLD of an address to a country
func (d *Detector) DetectFromEmailTLD(email string) (core.CountryResult, bool) {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return core.CountryResult{}, false
	}
	domain := strings.ToLower(email[at+1:])

	for _, e := range sortedTLDs {
		if strings.HasSuffix(domain, e.prefix) {
			return result(e.country, core.CountrySourceTLD), true
		}
	}
	return core.CountryResult{}, false
}

func result(c country, source string) core.CountryResult {
	return core.CountryResult{Country: c.name, Code: c.iso, Source: source}
}
