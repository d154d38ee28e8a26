package signature

import (
	"regexp"
	"strings"
)

var (
	trailingParenthetical = regexp.MustCompile(`\s*\([^)]+\)\s*$`)
	trailingAngleAddress  = regexp.MustCompile(`\s*<[^>]+>\s*$`)
	surroundingQuotes     = regexp.MustCompile(`^["'](.+)["']$`)
	subjectPrefix         = regexp.MustCompile(`(?i)^(?:PR|RE):\s*`)

	nonDialDigits = regexp.MustCompile(`[^\d+]`)
)

// CleanName tidies a sender display name such as `"Jane Doe (Acme)" <jane@acme.com>`
func CleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	name = trailingAngleAddress.ReplaceAllString(name, "")
	name = trailingParenthetical.ReplaceAllString(name, "")
	name = surroundingQuotes.ReplaceAllString(strings.TrimSpace(name), "$1")
	name = trailingParenthetical.ReplaceAllString(name, "")
	for subjectPrefix.MatchString(name) {
		name = subjectPrefix.ReplaceAllString(name, "")
	}
	return strings.TrimSpace(name)
}

// FormatPhone renders 10 and 11 digit North American numbers for display.
// Other numbers are returned unchanged.
func FormatPhone(phone string) string {
	if phone == "" {
		return ""
	}

	digits := nonDialDigits.ReplaceAllString(phone, "")
	switch {
	case len(digits) == 10:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	case len(digits) == 11 && digits[0] == '1':
		return "+1 (" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:]
	}
	return phone
}
