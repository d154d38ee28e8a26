package utils

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNormalize(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	got := tp.Normalize("Tel: ＋９７１ 4\r\nJane\rDoe\xff")
	want := "Tel: +971 4\nJane\nDoe"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPreview(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	if got := tp.Preview("  short\n\ntext  ", 50); got != "short text" {
		t.Fatalf("expected collapsed whitespace, got %q", got)
	}

	long := strings.Repeat("word ", 20)
	got := tp.Preview(long, 22)
	if got != "word word word word..." {
		t.Fatalf("expected cut at word boundary, got %q", got)
	}

	if got := tp.Preview("ééééé", 3); got != "ééé..." {
		t.Fatalf("expected rune-safe cut, got %q", got)
	}
}

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	if got := tp.TruncateText("abc", 10); got != "abc" {
		t.Fatalf("expected untouched text, got %q", got)
	}
	got := tp.TruncateText("aé", 2)
	if !strings.HasPrefix(got, "a\n") {
		t.Fatalf("expected truncation before the split rune, got %q", got)
	}
}
