package categorize_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/mikey/pr-contact-miner/internal/categorize"
	"github.com/mikey/pr-contact-miner/internal/core"
	"go.uber.org/zap"
)

type fnClassifier struct {
	f func(ctx context.Context, emails []*core.Email) ([]core.CategorizationResult, error)
}

func (c fnClassifier) ClassifyBatch(ctx context.Context, emails []*core.Email) ([]core.CategorizationResult, error) {
	return c.f(ctx, emails)
}

func makeEmails(n int) []*core.Email {
	emails := make([]*core.Email, n)
	for i := range emails {
		emails[i] = &core.Email{ID: fmt.Sprintf("e%d", i), Subject: fmt.Sprintf("Launch %d", i)}
	}
	return emails
}

// tagged returns one result per email naming the email's ID as a brand
func tagged(emails []*core.Email) []core.CategorizationResult {
	out := make([]core.CategorizationResult, len(emails))
	for i, e := range emails {
		out[i] = core.CategorizationResult{
			Categories: []core.CategoryScore{{Name: "Technology", Confidence: 0.9}},
			Brands:     []string{e.ID},
		}
	}
	return out
}

func TestCategorizeWithRateLimit_IsolatesFailedBatch(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	calls := 0
	c := fnClassifier{f: func(_ context.Context, emails []*core.Email) ([]core.CategorizationResult, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 2 {
			return nil, errors.New("unparseable output")
		}
		return tagged(emails), nil
	}}

	var progress [][2]int
	d := categorize.NewDispatcher(c, time.Millisecond, 0, zap.NewNop())
	got := d.CategorizeWithRateLimit(context.Background(), makeEmails(23), 10, func(processed, total int) {
		progress = append(progress, [2]int{processed, total})
	})

	if calls != 3 {
		t.Fatalf("expected 3 classification calls, got %d", calls)
	}
	if len(got) != 23 {
		t.Fatalf("expected 23 results, got %d", len(got))
	}
	for i, r := range got {
		failedBatch := i >= 10 && i < 20
		if failedBatch != r.Empty() {
			t.Fatalf("result %d: expected empty=%v, got %+v", i, failedBatch, r)
		}
		if !failedBatch && r.Brands[0] != fmt.Sprintf("e%d", i) {
			t.Fatalf("result %d out of order: %+v", i, r)
		}
	}

	want := [][2]int{{10, 23}, {20, 23}, {23, 23}}
	if !reflect.DeepEqual(progress, want) {
		t.Fatalf("expected progress %v, got %v", want, progress)
	}
}

func TestCategorizeWithRateLimit_PadsShortAndTrimsLongReplies(t *testing.T) {
	t.Parallel()

	c := fnClassifier{f: func(_ context.Context, emails []*core.Email) ([]core.CategorizationResult, error) {
		if len(emails) == 4 {
			return tagged(emails)[:1], nil
		}
		return append(tagged(emails), tagged(emails)...), nil
	}}

	d := categorize.NewDispatcher(c, 0, 0, zap.NewNop())
	got := d.CategorizeWithRateLimit(context.Background(), makeEmails(6), 4, nil)

	if len(got) != 6 {
		t.Fatalf("expected 6 results, got %d", len(got))
	}
	if got[0].Empty() || !got[1].Empty() || !got[3].Empty() {
		t.Fatalf("expected first batch padded after one result, got %+v", got[:4])
	}
	if got[4].Brands[0] != "e4" || got[5].Brands[0] != "e5" {
		t.Fatalf("unexpected second batch %+v", got[4:])
	}
}

func TestCategorizeWithRateLimit_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	c := fnClassifier{f: func(_ context.Context, emails []*core.Email) ([]core.CategorizationResult, error) {
		calls++
		return tagged(emails), nil
	}}

	d := categorize.NewDispatcher(c, time.Hour, 0, zap.NewNop())
	start := time.Now()
	got := d.CategorizeWithRateLimit(ctx, makeEmails(23), 10, func(processed, _ int) {
		if processed == 10 {
			cancel()
		}
	})

	if time.Since(start) > 10*time.Second {
		t.Fatal("pause did not observe cancellation")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
	if len(got) != 23 {
		t.Fatalf("expected 23 results, got %d", len(got))
	}
	for i, r := range got {
		if (i < 10) == r.Empty() {
			t.Fatalf("result %d: unexpected emptiness %+v", i, r)
		}
	}
}

func TestCategorizeWithRateLimit_AppliesRequestTimeout(t *testing.T) {
	t.Parallel()

	c := fnClassifier{f: func(ctx context.Context, _ []*core.Email) ([]core.CategorizationResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	d := categorize.NewDispatcher(c, 0, 10*time.Millisecond, zap.NewNop())
	got := d.CategorizeWithRateLimit(context.Background(), makeEmails(3), 0, nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for _, r := range got {
		if !r.Empty() {
			t.Fatalf("expected timed out batch to be empty, got %+v", r)
		}
	}
}

func TestCategorizeWithRateLimit_Empty(t *testing.T) {
	t.Parallel()

	c := fnClassifier{f: func(context.Context, []*core.Email) ([]core.CategorizationResult, error) {
		t.Fatal("classifier must not be called")
		return nil, nil
	}}
	d := categorize.NewDispatcher(c, 0, 0, zap.NewNop())
	if got := d.CategorizeWithRateLimit(context.Background(), nil, 10, nil); len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
}

func TestCategorizeWithRateLimit_PausesAfterEachBatchCompletes(t *testing.T) {
	t.Parallel()

	const delay = 200 * time.Millisecond
	var starts, ends []time.Time
	c := fnClassifier{f: func(_ context.Context, emails []*core.Email) ([]core.CategorizationResult, error) {
		starts = append(starts, time.Now())
		time.Sleep(20 * time.Millisecond)
		ends = append(ends, time.Now())
		return tagged(emails), nil
	}}

	d := categorize.NewDispatcher(c, delay, 0, zap.NewNop())
	d.CategorizeWithRateLimit(context.Background(), makeEmails(5), 2, nil)
	done := time.Now()

	if len(starts) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(starts))
	}
	for i := 1; i < len(starts); i++ {
		if gap := starts[i].Sub(ends[i-1]); gap < delay {
			t.Fatalf("batch %d started %v after the previous one finished, want at least %v", i+1, gap, delay)
		}
	}
	if tail := done.Sub(ends[len(ends)-1]); tail >= delay {
		t.Fatalf("expected no pause after the last batch, waited %v", tail)
	}
}
