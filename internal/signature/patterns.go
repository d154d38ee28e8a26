package signature

import (
	"regexp"
	"strings"

	"mvdan.cc/xurls/v2"
)

var delimiterPatterns = compileAll(
	`^--\s*$`,
	`^---\s*$`,
	`^_{3,}\s*$`,
	`^-{3,}\s*$`,
	`^Best\s*(?:regards|wishes)?,?\s*$`,
	`^Kind\s+regards?,?\s*$`,
	`^Regards?,?\s*$`,
	`^Thanks?,?\s*$`,
	`^Thank\s+you,?\s*$`,
	`^Cheers?,?\s*$`,
	`^Sincerely,?\s*$`,
	`^Warm\s+regards?,?\s*$`,
	`^All\s+the\s+best,?\s*$`,
	`^Sent\s+from\s+my\s+`,
)

// phonePatterns are tried in order: US, international, parenthesized area
// code, plain dash-separated.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+?1?[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\+\d{1,3}[-.\s]?\d{1,4}[-.\s]?\d{1,4}[-.\s]?\d{1,9}`),
	regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\d{3}[-.\s]\d{3}[-.\s]\d{4}`),
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	urlPattern   = xurls.Relaxed()

	nonPhoneChars = regexp.MustCompile(`[^\d+\-().\s]`)
	yearToken     = regexp.MustCompile(`\b20\d{2}\b`)

	leadingDecoration  = regexp.MustCompile(`^[|\-•·*]+\s*`)
	trailingDecoration = regexp.MustCompile(`\s*[|\-•·*]+$`)

	legalSuffix = regexp.MustCompile(`(?i)\b(?:inc|llc|l\.l\.c|ltd|limited|corp|corporation|gmbh|plc|llp|group|holdings|fze|fzco|fz-llc|fz llc|dmcc|wll|w\.l\.l|pte|pty|s\.a\.l|sarl)\.?$`)
	roleSuffix  = regexp.MustCompile(`(?i)\b(?:manager|director|executive|consultant|specialist|coordinator|lead|officer|president|analyst|strategist|advisor|administrator|supervisor|representative)$`)
)

var invalidTitlePatterns = compileAll(
	`^(?:how\s+to|why|what|when|where|introducing|announcing|press\s+release|for\s+immediate\s+release|breaking|exclusive|join\s+us|save\s+the\s+date|register|watch|read|discover|meet\s+the)\b`,
	`<[^>]*>`,
	`&(?:[a-z]+|#\d+);`,
	`©|\(c\)|copyright`,
)

// falsePositivePhrases mark marketing and legal boilerplate lines
var falsePositivePhrases = []string{
	"unsubscribe",
	"privacy policy",
	"privacy notice",
	"copyright",
	"all rights reserved",
	"terms of use",
	"terms and conditions",
	"view in browser",
	"view this email",
	"view online",
	"click here",
	"manage preferences",
	"update your preferences",
	"email preferences",
	"opt out",
	"opt-out",
	"you are receiving",
	"you received this",
	"this email was sent",
	"this message is intended",
	"intended recipient",
	"confidential",
	"disclaimer",
	"do not reply",
	"powered by",
	"follow us",
	"forward to a friend",
	"read more",
	"learn more",
	"sign up",
	"registered office",
	"registered in",
	"please consider the environment",
}

// titleKeywords are substrings that suggest a job title
var titleKeywords = []string{
	"manager",
	"director",
	"coordinator",
	"specialist",
	"executive",
	"officer",
	"president",
	"vp",
	"vice president",
	"head of",
	"lead",
	"senior",
	"junior",
	"associate",
	"assistant",
	"pr ",
	"public relations",
	"communications",
	"media relations",
	"press",
	"marketing",
	"brand",
	"account",
	"consultant",
	"strategist",
	"analyst",
	"editor",
	"writer",
	"publicist",
	"founder",
	"ceo",
	"coo",
	"cmo",
	"chief",
}

type indicator struct {
	word string
	re   *regexp.Regexp
}

// agencyIndicators are whole-word hints that a line names an agency.
// Order matters: the first hit decides the ambiguity veto.
var agencyIndicators = func() []indicator {
	words := []string{
		"pr",
		"public relations",
		"communications",
		"agency",
		"consulting",
		"media",
		"marketing",
		"group",
		"partners",
		"associates",
	}
	out := make([]indicator, 0, len(words))
	for _, w := range words {
		out = append(out, indicator{
			word: w,
			re:   regexp.MustCompile(`(?i)\b` + strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`) + `\b`),
		})
	}
	return out
}()

// ambiguousIndicators are also common in job titles
var ambiguousIndicators = map[string]bool{
	"media":          true,
	"communications": true,
	"marketing":      true,
}

// invalidCompanyTokens rule out navigation and header lines
var invalidCompanyTokens = map[string]bool{
	"team":         true,
	"unsubscribe":  true,
	"subscribe":    true,
	"share":        true,
	"forward":      true,
	"reply":        true,
	"follow":       true,
	"tweet":        true,
	"click":        true,
	"download":     true,
	"register":     true,
	"login":        true,
	"newsletter":   true,
	"disclaimer":   true,
	"confidential": true,
	"privacy":      true,
	"attachment":   true,
	"attachments":  true,
	"regards":      true,
	"thanks":       true,
	"tel":          true,
	"phone":        true,
	"mobile":       true,
	"mob":          true,
	"fax":          true,
	"email":        true,
	"web":          true,
	"website":      true,
	"address":      true,
	"from":         true,
	"sent":         true,
	"subject":      true,
	"date":         true,
	"cc":           true,
}

// genericLocalParts are shared role mailboxes that never identify a person
var genericLocalParts = map[string]bool{
	"support": true,
	"info":    true,
	"hello":   true,
	"contact": true,
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func hasPhoneShape(s string) bool {
	for _, re := range phonePatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// looksLikeURL reports whether s contains a web address. Email addresses
// alone do not count.
func looksLikeURL(s string) bool {
	for _, m := range urlPattern.FindAllString(emailPattern.ReplaceAllString(s, " "), -1) {
		if !strings.Contains(m, "@") {
			return true
		}
	}
	return false
}

func stripDecoration(s string) string {
	s = leadingDecoration.ReplaceAllString(strings.TrimSpace(s), "")
	s = trailingDecoration.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
