package categorize_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/mikey/pr-contact-miner/internal/categorize"
	"github.com/mikey/pr-contact-miner/internal/core"
	"github.com/mikey/pr-contact-miner/internal/utils"
	"go.uber.org/zap"
)

type fnLLM struct {
	f func(ctx context.Context, prompt string) (string, error)
}

func (l fnLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return l.f(ctx, prompt)
}

func newClassifier(f func(ctx context.Context, prompt string) (string, error)) *categorize.LLMClassifier {
	logger := zap.NewNop()
	return categorize.NewLLMClassifier(fnLLM{f: f}, utils.NewTextProcessor(logger), 0, logger)
}

func TestClassifyBatch_MapsByEmailIndex(t *testing.T) {
	t.Parallel()

	var prompt string
	reply := "Here you go:\n```json\n[\n" +
		`{"email_index": 3, "categories": [{"name": "Automotive", "confidence": 0.7}], "brands": ["Volvo"]},` +
		`{"email_index": 1, "categories": [{"name": "Technology"}], "brands": [" Acme ", ""]},` +
		`{"email_index": 9, "categories": [{"name": "Ignored"}]}` +
		"\n]\n```"
	c := newClassifier(func(_ context.Context, p string) (string, error) {
		prompt = p
		return reply, nil
	})

	emails := []*core.Email{
		{Subject: "Gadget launch", Snippet: "A new gadget"},
		{Subject: "Hotel opening", Body: "Join us\n\nfor the   opening"},
		{Subject: "Car reveal", Snippet: "The new EV"},
	}
	got, err := c.ClassifyBatch(context.Background(), emails)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}

	first := []core.CategoryScore{{Name: "Technology", Confidence: categorize.DefaultConfidence}}
	if !reflect.DeepEqual(got[0].Categories, first) || !reflect.DeepEqual(got[0].Brands, []string{"Acme"}) {
		t.Fatalf("unexpected first result %+v", got[0])
	}
	if !got[1].Empty() {
		t.Fatalf("expected missing email to be empty, got %+v", got[1])
	}
	if got[2].Categories[0].Name != "Automotive" || got[2].Categories[0].Confidence != 0.7 || got[2].Brands[0] != "Volvo" {
		t.Fatalf("unexpected third result %+v", got[2])
	}
	if !strings.Contains(string(got[2].Raw), `"Volvo"`) {
		t.Fatalf("expected raw item to be kept, got %s", got[2].Raw)
	}

	for _, want := range []string{
		"[Email 1]\nSubject: Gadget launch\nPreview: A new gadget",
		"[Email 2]\nSubject: Hotel opening\nPreview: Join us for the opening",
		"return exactly 3 objects",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt is missing %q:\n%s", want, prompt)
		}
	}
}

func TestClassifyBatch_PositionalFallback(t *testing.T) {
	t.Parallel()

	c := newClassifier(func(context.Context, string) (string, error) {
		return `[{"categories": [{"name": "Sports", "confidence": 1.4}]}, {"brands": ["Nike"]}]`, nil
	})
	got, err := c.ClassifyBatch(context.Background(), []*core.Email{{Subject: "a"}, {Subject: "b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Categories[0].Confidence != 1 {
		t.Fatalf("expected confidence clamped to 1, got %v", got[0].Categories[0].Confidence)
	}
	if got[1].Brands[0] != "Nike" {
		t.Fatalf("unexpected second result %+v", got[1])
	}
}

func TestClassifyBatch_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]func(context.Context, string) (string, error){
		"call error": func(context.Context, string) (string, error) { return "", errors.New("rate limited") },
		"no json":    func(context.Context, string) (string, error) { return "I cannot help with that.", nil },
		"broken":     func(context.Context, string) (string, error) { return `[{"email_index": 1,`, nil },
	}
	for name, f := range cases {
		f := f
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := newClassifier(f).ClassifyBatch(context.Background(), []*core.Email{{Subject: "x"}}); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestDiscoverCategories(t *testing.T) {
	t.Parallel()

	var prompt string
	c := newClassifier(func(_ context.Context, p string) (string, error) {
		prompt = p
		return `Sure: ["Technology", "technology", " Travel & Hospitality ", ""]`, nil
	})

	samples := make([]*core.Email, 60)
	for i := range samples {
		samples[i] = &core.Email{Subject: "Sample", Snippet: strings.Repeat("x", 300)}
	}
	samples[50].Subject = "Beyond the limit"

	got, err := c.DiscoverCategories(context.Background(), samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"Technology", "Travel & Hospitality"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if strings.Count(prompt, "Subject: Sample") != 50 || strings.Contains(prompt, "Beyond the limit") {
		t.Fatal("expected exactly 50 samples in the prompt")
	}
	if strings.Contains(prompt, strings.Repeat("x", 201)) {
		t.Fatal("expected snippets cut to 200 characters")
	}
}
