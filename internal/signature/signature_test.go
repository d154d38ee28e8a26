package signature_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mikey/pr-contact-miner/internal/signature"
)

func TestLocate_StartsAtDelimiter(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"best regards": "Hi team,\nPlease find the release attached.\n\nBest regards,\nJane Doe\nAccount Director",
		"dashes":       "Hello,\nSee below.\n--\nJane Doe\nAcme PR",
		"underscores":  "Body text\n_____\nJane Doe",
		"thanks":       "Body text\n  THANKS  \nJane",
		"sent from":    "Short reply\nSent from my iPhone",
	}

	for name, body := range cases {
		name, body := name, body
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := signature.Locate(body)
			lines := strings.Split(body, "\n")
			var want string
			for i, l := range lines {
				trimmed := strings.ToLower(strings.TrimSpace(l))
				if trimmed == "best regards," || trimmed == "--" || trimmed == "_____" || trimmed == "thanks" || strings.HasPrefix(trimmed, "sent from my") {
					want = strings.Join(lines[i:], "\n")
					break
				}
			}
			if got != want {
				t.Fatalf("expected signature %q, got %q", want, got)
			}
		})
	}
}

func TestLocate_FirstDelimiterWins(t *testing.T) {
	body := "Intro\nThanks\nmiddle\nBest regards\nJane"
	if got := signature.Locate(body); got != "Thanks\nmiddle\nBest regards\nJane" {
		t.Fatalf("unexpected signature %q", got)
	}
}

func TestLocate_ContactWindow(t *testing.T) {
	lines := []string{"Para one of the pitch.", "Para two of the pitch.", "", "Jane Doe", "PR Manager", "jane@acme.com"}
	body := strings.Join(lines, "\n")

	// The window starting at the first line already holds an email and a title keyword.
	if got := signature.Locate(body); got != body {
		t.Fatalf("expected window from the first line, got %q", got)
	}

	quoted := "> quoted 555-123-4567\nplain text"
	if got := signature.Locate(quoted); got != quoted {
		t.Fatalf("expected fallback to whole short body, got %q", got)
	}
}

func TestLocate_FallsBackToLastTenLines(t *testing.T) {
	t.Parallel()

	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, "just some prose without contact details")
	}
	body := strings.Join(lines, "\n")

	want := strings.Join(lines[20:], "\n")
	if got := signature.Locate(body); got != want {
		t.Fatalf("expected last 10 lines, got %q", got)
	}
}

func TestExtractPhone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want string
	}{
		{"bare digit run", "order 12345678901", ""},
		{"uae international", "Jane Doe\nT: +971 4 123 4567", "+971 4 123 4567"},
		{"us dashed", "Office 555-123-4567", "555-123-4567"},
		{"parenthesized", "Call (555) 123-4567 today", "(555) 123-4567"},
		{"boilerplate line skipped", "Unsubscribe or call 555-123-4567\nM: +44 20 7946 0958", "+44 20 7946 0958"},
		{"url line skipped", "https://acme.com/555-123-4567", ""},
		{"email alongside phone", "E: jane@acme.ae | T: +971 50 123 4567", "+971 50 123 4567"},
		{"year is not a phone", "Founded 2019", ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := signature.ExtractPhone(tc.text); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestExtractPhone_DigitsSurviveCleanup(t *testing.T) {
	got := signature.ExtractPhone("+971 4 123 4567")
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, got)
	if digits != "97141234567" {
		t.Fatalf("expected digits 97141234567, got %q from %q", digits, got)
	}
}

func TestExtractTitle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want string
	}{
		{"role suffix", "Jane Doe\nMarketing Director\nAcme Group", "Marketing Director"},
		{"bullet cleanup", "Jane Doe\n| Senior Account Executive |", "Senior Account Executive"},
		{"keyword line", "Jane Doe\nHead of Communications", "Head of Communications"},
		{"inline phone", "Marketing Director | +971 4 123 4567", "Marketing Director | +971 4 123 4567"},
		{"inline email", "PR Manager - jane@acme.com", "PR Manager - jane@acme.com"},
		{"legal suffix is a company", "Acme Communications LLC", ""},
		{"headline opener", "Introducing the new press kit", ""},
		{"ends with question", "Are you the press contact?", ""},
		{"too long", "Senior manager " + strings.Repeat("x", 60), ""},
		{"html remnant", "<b>PR Manager</b>", ""},
		{"boilerplate", "Copyright Acme Marketing Director", ""},
		{"single word", "Founder", ""},
		{"no keyword", "Jane Doe\nDubai, UAE", ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := signature.ExtractTitle(tc.text); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestExtractCompany(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		text        string
		displayName string
		want        string
	}{
		{"legal suffix", "Jane Doe\nAcme Holdings", "Jane Doe", "Acme Holdings"},
		{"ambiguous indicator is also a title keyword", "Jane Doe\nOrbit Communications", "Jane Doe", ""},
		{"marketing indicator vetoed", "Blue Marketing", "", ""},
		{"pr agency", "- Gulf PR Agency -", "", "Gulf PR Agency"},
		{"consulting indicator", "Jane Doe\nSummit Consulting", "Jane Doe", "Summit Consulting"},
		{"role suffix is a title", "Marketing Director", "", ""},
		{"ambiguity veto", "Head of Media", "", ""},
		{"display name skipped", "Media Partners\nOther", "media partners", ""},
		{"ampersand", "Smith & Partners", "", ""},
		{"year token", "Media Awards 2024", "", ""},
		{"invalid token", "The Media Team", "", ""},
		{"phone line", "Media: +971 4 123 4567", "", ""},
		{"no capitalized fallback", "Jane Doe\nAcme Widgets", "Jane Doe", ""},
		{"too long", "Consulting " + strings.Repeat("y", 50), "", ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := signature.ExtractCompany(tc.text, tc.displayName); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestTitleAndCompanyAreExclusive(t *testing.T) {
	sig := "Jane Doe\nMarketing Director"
	title := signature.ExtractTitle(sig)
	company := signature.ExtractCompany(sig, "Jane Doe")
	if title != "Marketing Director" {
		t.Fatalf("expected title, got %q", title)
	}
	if company == title {
		t.Fatalf("title %q was also returned as company", title)
	}
}

func TestExtractEmails(t *testing.T) {
	t.Parallel()

	text := "jane@acme.com\nJane.Doe@Acme.com\ninfo@acme.com\nnoreply@acme.com\npress@acme.com\nPRESS@acme.com\nnewsroom-no-reply@acme.com"
	got := signature.ExtractEmails(text, "JANE@acme.com")
	want := []string{"Jane.Doe@Acme.com", "press@acme.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if got := signature.ExtractEmails("no addresses here", ""); len(got) != 0 {
		t.Fatalf("expected none, got %v", got)
	}
}

func TestCleanName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		`"Jane Doe"`:                 "Jane Doe",
		"Jane Doe (Acme PR)":         "Jane Doe",
		"Jane Doe <jane@acme.com>":   "Jane Doe",
		`"Jane Doe" <jane@acme.com>`: "Jane Doe",
		"PR: Jane Doe":               "Jane Doe",
		"re: Jane Doe":               "Jane Doe",
		"  Jane Doe  ":               "Jane Doe",
		"":                           "",
	}
	for in, want := range cases {
		if got := signature.CleanName(in); got != want {
			t.Errorf("CleanName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatPhone(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"555.123.4567":    "(555) 123-4567",
		"1-555-123-4567":  "+1 (555) 123-4567",
		"+971 4 123 4567": "+971 4 123 4567",
		"":                "",
	}
	for in, want := range cases {
		if got := signature.FormatPhone(in); got != want {
			t.Errorf("FormatPhone(%q) = %q, want %q", in, got, want)
		}
	}
}
