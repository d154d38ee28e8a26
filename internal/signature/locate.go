// Package signature finds the signature block of an email body and mines
// contact fields out of it.
package signature

import "strings"

const (
	candidateLines = 15
	windowLines    = 10
	fallbackLines  = 10
)

// Locate returns the part of body most likely to be the sender's signature.
// It prefers the first sign-off or separator line, then a contact-looking
// window near the end, and finally the last ten lines.
func Locate(body string) string {
	lines := strings.Split(body, "\n")

	for i, line := range lines {
		if matchesAny(delimiterPatterns, strings.TrimSpace(line)) {
			return strings.Join(lines[i:], "\n")
		}
	}

	for i := max(0, len(lines)-candidateLines); i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, ">") {
			continue
		}
		if looksLikeSignatureStart(lines[i:]) {
			return strings.Join(lines[i:], "\n")
		}
	}

	return strings.Join(lines[max(0, len(lines)-fallbackLines):], "\n")
}

func looksLikeSignatureStart(remaining []string) bool {
	window := strings.ToLower(strings.Join(remaining[:min(len(remaining), windowLines)], "\n"))

	if hasPhoneShape(window) {
		return true
	}
	return emailPattern.MatchString(window) && containsAny(window, titleKeywords)
}
