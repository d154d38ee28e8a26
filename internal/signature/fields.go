package signature

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15

	minTitleLen   = 5
	maxTitleLen   = 60
	minTitleWords = 2
	maxTitleWords = 8

	minCompanyLen = 3
	maxCompanyLen = 50
)

// ExtractPhone returns the first phone number found in text. Lines are
// examined one at a time so numbers never span lines. Bare digit runs such
// as order numbers are rejected.
func ExtractPhone(text string) string {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if containsAny(lower, falsePositivePhrases) || looksLikeURL(line) {
			continue
		}

		for _, re := range phonePatterns {
			for _, m := range re.FindAllString(line, -1) {
				if phone, ok := acceptPhone(m); ok {
					return phone
				}
			}
		}
	}
	return ""
}

func acceptPhone(match string) (string, bool) {
	phone := strings.TrimSpace(nonPhoneChars.ReplaceAllString(match, ""))
	if !strings.ContainsAny(phone, "+-(.") && !strings.Contains(phone, " ") {
		return "", false
	}

	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return "", false
	}
	return phone, true
}

// ExtractTitle returns the first line of text that reads like a job title
func ExtractTitle(text string) string {
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if title, ok := titleCandidate(line); ok {
			return title
		}
	}
	return ""
}

func titleCandidate(line string) (string, bool) {
	lower := strings.ToLower(line)

	switch {
	case containsAny(lower, falsePositivePhrases),
		matchesAny(invalidTitlePatterns, line),
		looksLikeURL(line),
		strings.ContainsAny(line, "<>"):
		return "", false
	}

	if n := utf8.RuneCountInString(line); n < minTitleLen || n > maxTitleLen {
		return "", false
	}

	cleaned := stripDecoration(line)
	if legalSuffix.MatchString(cleaned) {
		return "", false
	}
	if roleSuffix.MatchString(cleaned) {
		if utf8.RuneCountInString(cleaned) >= minTitleLen {
			return cleaned, true
		}
		return "", false
	}

	if !containsAny(lower, titleKeywords) {
		return "", false
	}
	if words := len(strings.Fields(cleaned)); words < minTitleWords || words > maxTitleWords {
		return "", false
	}
	if strings.HasSuffix(cleaned, ":") || strings.HasSuffix(cleaned, "?") || strings.HasSuffix(cleaned, "!") {
		return "", false
	}
	return cleaned, true
}

// ExtractCompany returns the first line of text that names an organization.
// displayName is skipped so the sender's own name is never taken as a company.
// Without a legal suffix or agency keyword the result is empty.
func ExtractCompany(text, displayName string) string {
	name := strings.ToLower(strings.TrimSpace(displayName))

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if company, ok := companyCandidate(line, name); ok {
			return company
		}
	}
	return ""
}

func companyCandidate(line, displayName string) (string, bool) {
	n := utf8.RuneCountInString(line)
	if n < minCompanyLen || n > maxCompanyLen {
		return "", false
	}

	lower := strings.ToLower(line)
	switch {
	case displayName != "" && lower == displayName,
		emailPattern.MatchString(line),
		hasPhoneShape(line),
		containsAny(lower, falsePositivePhrases),
		hasInvalidCompanyToken(lower),
		looksLikeURL(line),
		strings.ContainsAny(line, "<>&©"),
		strings.Contains(lower, "(c)"),
		yearToken.MatchString(line):
		return "", false
	}

	cleaned := stripDecoration(line)
	if legalSuffix.MatchString(cleaned) {
		if utf8.RuneCountInString(cleaned) >= minCompanyLen {
			return cleaned, true
		}
		return "", false
	}
	if roleSuffix.MatchString(cleaned) {
		return "", false
	}

	hit := firstIndicator(cleaned)
	if hit == nil {
		return "", false
	}
	if ambiguousIndicators[hit.word] && containsAny(strings.ToLower(cleaned), titleKeywords) {
		return "", false
	}
	if l := utf8.RuneCountInString(cleaned); l < minCompanyLen || l >= maxCompanyLen {
		return "", false
	}
	return cleaned, true
}

func firstIndicator(s string) *indicator {
	for i := range agencyIndicators {
		if agencyIndicators[i].re.MatchString(s) {
			return &agencyIndicators[i]
		}
	}
	return nil
}

func hasInvalidCompanyToken(lower string) bool {
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, t := range tokens {
		if invalidCompanyTokens[t] {
			return true
		}
	}
	return false
}

// ExtractEmails returns the addresses in text other than primary and shared
// role mailboxes, deduplicated case-insensitively in first-seen order.
func ExtractEmails(text, primary string) []string {
	primary = strings.ToLower(strings.TrimSpace(primary))
	seen := make(map[string]bool)
	var out []string

	for _, m := range emailPattern.FindAllString(text, -1) {
		lower := strings.ToLower(m)
		if lower == primary || seen[lower] || isRoleMailbox(lower) {
			continue
		}
		seen[lower] = true
		out = append(out, m)
	}
	return out
}

func isRoleMailbox(lower string) bool {
	local := lower
	if at := strings.Index(lower, "@"); at >= 0 {
		local = lower[:at]
	}
	if strings.Contains(local, "noreply") || strings.Contains(local, "no-reply") {
		return true
	}
	return genericLocalParts[local]
}
