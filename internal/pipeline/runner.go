// Package pipeline drives emails from a source through extraction,
// persistence and optional categorization.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/pr-contact-miner/internal/categorize"
	"github.com/mikey/pr-contact-miner/internal/core"
	"github.com/mikey/pr-contact-miner/internal/ports"
	"github.com/mikey/pr-contact-miner/internal/whitelist"
	"go.uber.org/zap"
)

// Extractor mines a contact out of a single email
type Extractor interface {
	Extract(ctx context.Context, email *core.Email) *core.ExtractedContact
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeSkipped
	outcomeFiltered
	outcomeError
)

// pending is a stored email waiting for categorization
type pending struct {
	email     *core.Email
	contactID int64
}

// Runner implements the extraction pipeline
type Runner struct {
	extractor   Extractor
	store       core.ContactStore
	categorizer *categorize.Dispatcher
	whitelist   *whitelist.Checker
	batchSize   int
	logger      *zap.Logger
}

var _ ports.EmailProcessor = (*Runner)(nil)

// NewRunner creates a new pipeline runner. categorizer and checker may be
// nil to disable categorization and sender filtering.
func NewRunner(
	extractor Extractor,
	store core.ContactStore,
	categorizer *categorize.Dispatcher,
	checker *whitelist.Checker,
	batchSize int,
	logger *zap.Logger,
) *Runner {
	if batchSize <= 0 {
		batchSize = categorize.DefaultBatchSize
	}
	return &Runner{
		extractor:   extractor,
		store:       store,
		categorizer: categorizer,
		whitelist:   checker,
		batchSize:   batchSize,
		logger:      logger,
	}
}

// Run processes every email src yields. Categorization happens in batches
// after the source is drained. The returned stats are valid even when an
// error is returned.
func (r *Runner) Run(ctx context.Context, src ports.EmailSource, onProgress categorize.ProgressFunc) (*core.RunStats, error) {
	stats := &core.RunStats{RunID: uuid.NewString()}
	logger := r.logger.With(zap.String("run_id", stats.RunID))
	start := time.Now()

	logger.Info("Starting extraction run", zap.Bool("categorize", r.categorizer != nil))

	var queue []pending
	err := src.Fetch(ctx, func(email *core.Email) error {
		stats.Total++
		_, id, res, err := r.process(ctx, logger, email)
		switch res {
		case outcomeProcessed:
			stats.Processed++
			if r.categorizer != nil {
				queue = append(queue, pending{email: email, contactID: id})
			}
		case outcomeSkipped:
			stats.Skipped++
		case outcomeFiltered:
			stats.Filtered++
		case outcomeError:
			stats.Errors++
			logger.Error("Failed to process email", zap.String("email_id", email.ID), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		logger.Error("Extraction run stopped", zap.Error(err), zap.Int("total", stats.Total))
		return stats, fmt.Errorf("failed to fetch emails: %w", err)
	}

	if len(queue) > 0 {
		logger.Info("Categorizing emails", zap.Int("count", len(queue)), zap.Int("batch_size", r.batchSize))
		r.categorize(ctx, logger, queue, onProgress, stats)
	}

	logger.Info("Extraction run finished",
		zap.Int("total", stats.Total),
		zap.Int("processed", stats.Processed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("filtered", stats.Filtered),
		zap.Int("errors", stats.Errors),
		zap.Int("categorized", stats.Categorized),
		zap.Int("category_failures", stats.CategoryFailures),
		zap.Duration("elapsed", time.Since(start)))

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// ProcessEmail runs a single email through the pipeline, categorizing it
// immediately when categorization is enabled. It returns nil for emails
// that were skipped or filtered.
func (r *Runner) ProcessEmail(ctx context.Context, email *core.Email) (*core.ExtractedContact, error) {
	contact, id, res, err := r.process(ctx, r.logger, email)
	switch res {
	case outcomeError:
		return nil, err
	case outcomeSkipped, outcomeFiltered:
		return nil, nil
	}

	if r.categorizer != nil {
		var stats core.RunStats
		r.categorize(ctx, r.logger, []pending{{email: email, contactID: id}}, nil, &stats)
	}
	return contact, nil
}

func (r *Runner) process(ctx context.Context, logger *zap.Logger, email *core.Email) (*core.ExtractedContact, int64, outcome, error) {
	if r.whitelist != nil && r.whitelist.IsWhitelisted(email.From) {
		return nil, 0, outcomeFiltered, nil
	}

	done, err := r.store.IsProcessed(ctx, email.ID)
	if err != nil {
		return nil, 0, outcomeError, err
	}
	if done {
		return nil, 0, outcomeSkipped, nil
	}

	contact := r.extractor.Extract(ctx, email)
	if !validAddress(contact.Email) {
		logger.Debug("Skipping email without sender", zap.String("email_id", email.ID))
		return nil, 0, outcomeSkipped, nil
	}

	id, err := r.store.UpsertContact(ctx, contact)
	if err != nil {
		return nil, 0, outcomeError, err
	}

	for _, addr := range contact.AdditionalEmails {
		if err := r.store.AddEmail(ctx, id, addr); err != nil {
			logger.Warn("Failed to add secondary email",
				zap.Int64("contact_id", id),
				zap.String("email", addr),
				zap.Error(err))
		}
	}

	if err := r.store.MarkProcessed(ctx, email, id); err != nil {
		return nil, 0, outcomeError, err
	}

	return contact, id, outcomeProcessed, nil
}

func (r *Runner) categorize(ctx context.Context, logger *zap.Logger, queue []pending, onProgress categorize.ProgressFunc, stats *core.RunStats) {
	emails := make([]*core.Email, len(queue))
	for i, p := range queue {
		emails[i] = p.email
	}

	results := r.categorizer.CategorizeWithRateLimit(ctx, emails, r.batchSize, onProgress)
	for i, res := range results {
		if res.Empty() {
			stats.CategoryFailures++
			continue
		}
		stats.Categorized++
		if err := r.attach(ctx, queue[i].contactID, res); err != nil {
			stats.Errors++
			logger.Error("Failed to store categorization",
				zap.String("email_id", queue[i].email.ID),
				zap.Int64("contact_id", queue[i].contactID),
				zap.Error(err))
		}
	}
}

func (r *Runner) attach(ctx context.Context, contactID int64, res core.CategorizationResult) error {
	var errs []error
	for _, c := range res.Categories {
		if err := r.store.AddCategory(ctx, contactID, c); err != nil {
			errs = append(errs, fmt.Errorf("category %q: %w", c.Name, err))
		}
	}
	for _, b := range res.Brands {
		if err := r.store.AddBrand(ctx, contactID, b); err != nil {
			errs = append(errs, fmt.Errorf("brand %q: %w", b, err))
		}
	}
	return errors.Join(errs...)
}

// Collect reads up to n emails from src, for sampling
func Collect(ctx context.Context, src ports.EmailSource, n int) ([]*core.Email, error) {
	var out []*core.Email
	errFull := errors.New("sample full")
	err := src.Fetch(ctx, func(email *core.Email) error {
		out = append(out, email)
		if len(out) >= n {
			return errFull
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFull) {
		return out, fmt.Errorf("failed to fetch emails: %w", err)
	}
	return out, nil
}

func validAddress(addr string) bool {
	at := strings.LastIndex(addr, "@")
	return at > 0 && at < len(addr)-1
}
