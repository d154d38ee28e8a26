package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// TextProcessor provides utilities for processing email text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// Normalize prepares raw body text for line-based extraction: invalid UTF-8
// is dropped, compatibility characters such as full-width digits and
// non-breaking spaces are folded (NFKC) and line endings become "\n".
func (tp *TextProcessor) Normalize(text string) string {
	text = tp.SanitizeUTF8(text)
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// TruncateText safely truncates text to the specified maximum size in bytes
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + "\n[... Content truncated due to size limits ...]"
}

// Preview shortens text to at most maxChars characters for snippets and
// prompts. Whitespace is collapsed and a cut near the end backs up to the
// last word boundary.
func (tp *TextProcessor) Preview(text string, maxChars int) string {
	text = strings.Join(strings.Fields(text), " ")
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:maxChars])
	if i := strings.LastIndex(cut, " "); i > 0 && utf8.RuneCountInString(cut[:i]) > maxChars*4/5 {
		cut = cut[:i]
	}
	return cut + "..."
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	result := strings.ToValidUTF8(text, "")

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(result)))

	return result
}
