package whitelist_test

import (
	"testing"

	"github.com/mikey/pr-contact-miner/internal/whitelist"
	"go.uber.org/zap"
)

func TestChecker_IsWhitelisted(t *testing.T) {
	t.Parallel()

	c := whitelist.NewChecker([]string{" MyPaper.com ", "*.newsroom.io", "@desk.ae", "editor@gmail.com", ""}, zap.NewNop())
	if c.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", c.Len())
	}

	cases := map[string]bool{
		"jane@mypaper.com":         true,
		"Jane@Sports.MyPaper.com":  true,
		"ops@newsroom.io":          true,
		"a@b.desk.ae":              true,
		"editor@gmail.com":         true,
		"other@gmail.com":          false,
		"jane@notmypaper.com":      false,
		"jane@mypaper.com.evil.io": false,
		"not-an-address":           false,
		"trailing@":                false,
		"":                         false,
	}
	for from, want := range cases {
		if got := c.IsWhitelisted(from); got != want {
			t.Errorf("IsWhitelisted(%q) = %v, want %v", from, got, want)
		}
	}
}

func TestChecker_Empty(t *testing.T) {
	t.Parallel()

	c := whitelist.NewChecker(nil, nil)
	if c.IsWhitelisted("jane@mypaper.com") {
		t.Fatal("empty checker must not match")
	}
}
