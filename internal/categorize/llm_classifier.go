package categorize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mikey/pr-contact-miner/internal/core"
	"github.com/mikey/pr-contact-miner/internal/utils"
	"go.uber.org/zap"
)

// Classifier defaults
const (
	DefaultPreviewChars   = 300
	DefaultConfidence     = 0.8
	maxDiscoverySamples   = 50
	discoverySnippetChars = 200
)

var errNoJSON = errors.New("no JSON found in LLM response")

// LLMClassifier implements core.Classifier on top of a text completion model
type LLMClassifier struct {
	llm          core.LLMClient
	text         *utils.TextProcessor
	previewChars int
	logger       *zap.Logger
}

// batchItem is one element of the model's reply
type batchItem struct {
	EmailIndex *int           `json:"email_index"`
	Categories []categoryItem `json:"categories"`
	Brands     []string       `json:"brands"`
}

type categoryItem struct {
	Name       string   `json:"name"`
	Confidence *float64 `json:"confidence"`
}

// NewLLMClassifier creates a new LLMClassifier
func NewLLMClassifier(llm core.LLMClient, text *utils.TextProcessor, previewChars int, logger *zap.Logger) *LLMClassifier {
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}
	return &LLMClassifier{
		llm:          llm,
		text:         text,
		previewChars: previewChars,
		logger:       logger,
	}
}

// ClassifyBatch sends all emails in one prompt. Replies are matched to
// emails by their declared email_index, falling back to position when the
// index is absent. Emails the model skipped get empty results.
func (c *LLMClassifier) ClassifyBatch(ctx context.Context, emails []*core.Email) ([]core.CategorizationResult, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	reply, err := c.llm.Complete(ctx, c.batchPrompt(emails))
	if err != nil {
		return nil, fmt.Errorf("failed to classify batch: %w", err)
	}

	var raws []json.RawMessage
	if err := decodeJSON(reply, '[', ']', &raws); err != nil {
		return nil, fmt.Errorf("failed to parse batch response: %w", err)
	}

	results := make([]core.CategorizationResult, len(emails))
	filled := make([]bool, len(emails))
	for pos, raw := range raws {
		var item batchItem
		if err := json.Unmarshal(raw, &item); err != nil {
			c.logger.Debug("Skipping malformed batch item", zap.Int("position", pos), zap.Error(err))
			continue
		}

		idx := pos
		if item.EmailIndex != nil {
			idx = *item.EmailIndex - 1
		}
		if idx < 0 || idx >= len(emails) || filled[idx] {
			continue
		}
		results[idx] = item.result(raw)
		filled[idx] = true
	}

	return results, nil
}

func (c *LLMClassifier) batchPrompt(emails []*core.Email) string {
	blocks := make([]string, len(emails))
	for i, e := range emails {
		blocks[i] = fmt.Sprintf("[Email %d]\nSubject: %s\nPreview: %s", i+1, e.Subject, c.preview(e, c.previewChars))
	}
	return fmt.Sprintf(batchPromptFormat, len(emails), strings.Join(blocks, "\n\n"), len(emails))
}

// DiscoverCategories asks the model to propose category names from a
// sample of at most 50 emails
func (c *LLMClassifier) DiscoverCategories(ctx context.Context, samples []*core.Email) ([]string, error) {
	if len(samples) > maxDiscoverySamples {
		samples = samples[:maxDiscoverySamples]
	}

	blocks := make([]string, len(samples))
	for i, e := range samples {
		blocks[i] = fmt.Sprintf("Subject: %s\nSnippet: %s", e.Subject, c.preview(e, discoverySnippetChars))
	}

	reply, err := c.llm.Complete(ctx, fmt.Sprintf(discoverPromptFormat, strings.Join(blocks, "\n\n")))
	if err != nil {
		return nil, fmt.Errorf("failed to discover categories: %w", err)
	}

	var names []string
	if err := decodeJSON(reply, '[', ']', &names); err != nil {
		return nil, fmt.Errorf("failed to parse discovered categories: %w", err)
	}

	seen := make(map[string]bool, len(names))
	categories := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		categories = append(categories, name)
	}
	return categories, nil
}

func (c *LLMClassifier) preview(e *core.Email, maxChars int) string {
	if s := strings.TrimSpace(e.Snippet); s != "" {
		return c.text.Preview(s, maxChars)
	}
	return c.text.Preview(e.Body, maxChars)
}

func (item batchItem) result(raw json.RawMessage) core.CategorizationResult {
	var res core.CategorizationResult
	for _, cat := range item.Categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			continue
		}
		confidence := DefaultConfidence
		if cat.Confidence != nil {
			confidence = min(max(*cat.Confidence, 0), 1)
		}
		res.Categories = append(res.Categories, core.CategoryScore{Name: name, Confidence: confidence})
	}
	for _, brand := range item.Brands {
		if brand = strings.TrimSpace(brand); brand != "" {
			res.Brands = append(res.Brands, brand)
		}
	}
	res.Raw = raw
	return res
}

// decodeJSON unmarshals text into v, retrying with the span between the
// first open and the last close delimiter when the model wrapped its JSON
// in prose or code fences
func decodeJSON(text string, openDelim, closeDelim byte, v any) error {
	text = strings.TrimSpace(text)
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	start := strings.IndexByte(text, openDelim)
	end := strings.LastIndexByte(text, closeDelim)
	if start < 0 || end <= start {
		return errNoJSON
	}
	return json.Unmarshal([]byte(text[start:end+1]), v)
}
