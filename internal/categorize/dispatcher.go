// Package categorize assigns topical categories and promoted brands to
// emails in paced batches.
package categorize

import (
	"context"
	"time"

	"github.com/mikey/pr-contact-miner/internal/core"
	"go.uber.org/zap"
)

// Dispatcher defaults
const (
	DefaultBatchSize = 10
	DefaultDelay     = 500 * time.Millisecond
)

// ProgressFunc is called after every batch with the number of emails
// handled so far and the total
type ProgressFunc func(processed, total int)

// Dispatcher splits emails into batches and sends one classification
// request per batch, pausing between requests
type Dispatcher struct {
	classifier     core.Classifier
	delay          time.Duration
	requestTimeout time.Duration
	logger         *zap.Logger
}

// batchOutcome is what a single batch produced. A failed batch still
// carries one empty result per email so failures never cross batches.
type batchOutcome struct {
	results []core.CategorizationResult
	err     error
}

// NewDispatcher creates a new Dispatcher. A zero requestTimeout leaves the
// classifier bounded only by ctx.
func NewDispatcher(classifier core.Classifier, delay, requestTimeout time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		classifier:     classifier,
		delay:          delay,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// CategorizeWithRateLimit returns exactly one result per email, in input
// order. Cancelling ctx stops further batches; results already produced are
// kept and the rest are empty.
func (d *Dispatcher) CategorizeWithRateLimit(
	ctx context.Context,
	emails []*core.Email,
	batchSize int,
	onProgress ProgressFunc,
) []core.CategorizationResult {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	total := len(emails)
	results := make([]core.CategorizationResult, 0, total)

	for start := 0; start < total; start += batchSize {
		if ctx.Err() != nil {
			break
		}

		end := min(start+batchSize, total)
		outcome := d.runBatch(ctx, emails[start:end])
		if outcome.err != nil {
			d.logger.Warn("Batch categorization failed",
				zap.Int("batch_start", start),
				zap.Int("batch_size", end-start),
				zap.Error(outcome.err))
		}
		results = append(results, outcome.results...)

		if onProgress != nil {
			onProgress(end, total)
		}

		if end < total && !d.pause(ctx) {
			break
		}
	}

	if len(results) < total {
		d.logger.Info("Categorization stopped early",
			zap.Int("categorized", len(results)),
			zap.Int("total", total))
	}
	return pad(results, total)
}

func (d *Dispatcher) runBatch(ctx context.Context, batch []*core.Email) batchOutcome {
	reqCtx := ctx
	if d.requestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, d.requestTimeout)
		defer cancel()
	}

	results, err := d.classifier.ClassifyBatch(reqCtx, batch)
	if err != nil {
		return batchOutcome{results: make([]core.CategorizationResult, len(batch)), err: err}
	}
	if len(results) > len(batch) {
		results = results[:len(batch)]
	}
	return batchOutcome{results: pad(results, len(batch))}
}

// pause waits out the inter-batch delay. The delay starts when a batch
// completes, which a token bucket limiter does not guarantee. It reports
// false when ctx was cancelled first.
func (d *Dispatcher) pause(ctx context.Context) bool {
	if d.delay <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func pad(results []core.CategorizationResult, n int) []core.CategorizationResult {
	for len(results) < n {
		results = append(results, core.CategorizationResult{})
	}
	return results
}
