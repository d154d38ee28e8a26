package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mikey/pr-contact-miner/internal/adapters/ingest"
	"github.com/mikey/pr-contact-miner/internal/categorize"
	"github.com/mikey/pr-contact-miner/internal/core"
	"github.com/mikey/pr-contact-miner/internal/di"
	"github.com/mikey/pr-contact-miner/internal/extractor"
	"github.com/mikey/pr-contact-miner/internal/factory"
	"github.com/mikey/pr-contact-miner/internal/pipeline"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// discoverySamples is how many emails are shown to the LLM for category discovery
const discoverySamples = 50

func main() {
	flags, err := di.ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Invalid arguments: %v\n", err)
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var action any
	switch {
	case flags.Export != "":
		action = exportAction(ctx, flags.Export)
	case flags.Inspect != "":
		action = inspectAction(ctx, flags)
	case flags.DiscoverCategories:
		action = discoverAction(ctx)
	default:
		action = runAction(ctx)
	}

	if err := container.Invoke(action); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func runAction(ctx context.Context) any {
	return func(
		logger *zap.Logger,
		sources *factory.SourceFactory,
		runner *pipeline.Runner,
		store core.ContactStore,
		cache core.DomainCache,
		llm core.LLMClient,
	) error {
		defer logger.Sync()
		defer closeResources(logger, store, cache, llm)

		src, err := sources.CreateEmailSource(ctx)
		if err != nil {
			return fmt.Errorf("failed to open email source: %w", err)
		}
		defer src.Close()

		stats, err := runner.Run(ctx, src, progressPrinter(os.Stderr))
		printStats(os.Stdout, stats)
		return err
	}
}

func exportAction(ctx context.Context, path string) any {
	return func(logger *zap.Logger, store core.ContactStore) error {
		defer logger.Sync()
		defer closeResources(logger, store, nil, nil)

		var w io.Writer = os.Stdout
		if path != "-" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer f.Close()
			w = f
		}

		n, err := pipeline.ExportCSV(ctx, store, w)
		if err != nil {
			return err
		}
		logger.Info("Exported contacts", zap.Int("count", n), zap.String("file", path))
		return nil
	}
}

func inspectAction(ctx context.Context, flags *di.CLIFlags) any {
	return func(logger *zap.Logger, svc *extractor.Service, cache core.DomainCache) error {
		defer logger.Sync()
		defer closeResources(logger, nil, cache, nil)

		var r io.Reader = os.Stdin
		if flags.Inspect != "-" {
			f, err := os.Open(flags.Inspect)
			if err != nil {
				return fmt.Errorf("failed to open message file: %w", err)
			}
			defer f.Close()
			r = f
		}

		_, err := ingest.NewCLIInspector(svc, os.Stdout, logger, flags.Verbose).Inspect(ctx, r)
		return err
	}
}

func discoverAction(ctx context.Context) any {
	return func(
		logger *zap.Logger,
		sources *factory.SourceFactory,
		classifier *categorize.LLMClassifier,
		llm core.LLMClient,
	) error {
		defer logger.Sync()
		defer closeResources(logger, nil, nil, llm)

		if classifier == nil {
			return errors.New("category discovery requires an LLM provider")
		}

		src, err := sources.CreateEmailSource(ctx)
		if err != nil {
			return fmt.Errorf("failed to open email source: %w", err)
		}
		defer src.Close()

		samples, err := pipeline.Collect(ctx, src, discoverySamples)
		if err != nil {
			return err
		}
		if len(samples) == 0 {
			return errors.New("no emails found to sample")
		}

		categories, err := classifier.DiscoverCategories(ctx, samples)
		if err != nil {
			return err
		}
		fmt.Printf("Discovered %d categories from %d emails:\n", len(categories), len(samples))
		for _, c := range categories {
			fmt.Printf("  - %s\n", c)
		}
		return nil
	}
}

// progressPrinter redraws a single progress line on w
func progressPrinter(w io.Writer) categorize.ProgressFunc {
	const width = 40
	return func(done, total int) {
		if total <= 0 {
			return
		}
		filled := width * done / total
		fmt.Fprintf(w, "\rCategorizing [%s%s] %d/%d (%d%%)",
			strings.Repeat("=", filled), strings.Repeat(" ", width-filled),
			done, total, 100*done/total)
		if done >= total {
			fmt.Fprintln(w)
		}
	}
}

func printStats(w io.Writer, stats *core.RunStats) {
	if stats == nil {
		return
	}
	fmt.Fprintf(w, "\n=== Extraction Summary (run %s) ===\n", stats.RunID)
	fmt.Fprintf(w, "Emails seen:        %d\n", stats.Total)
	fmt.Fprintf(w, "Processed:          %d\n", stats.Processed)
	fmt.Fprintf(w, "Already processed:  %d\n", stats.Skipped)
	fmt.Fprintf(w, "Whitelisted:        %d\n", stats.Filtered)
	fmt.Fprintf(w, "Errors:             %d\n", stats.Errors)
	if stats.Categorized+stats.CategoryFailures > 0 {
		fmt.Fprintf(w, "Categorized:        %d\n", stats.Categorized)
		fmt.Fprintf(w, "Uncategorized:      %d\n", stats.CategoryFailures)
	}
}

// closeResources releases whatever the container built. Any argument may be nil.
func closeResources(logger *zap.Logger, store core.ContactStore, cache core.DomainCache, llm core.LLMClient) {
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close contact store", zap.Error(err))
		}
	}
	if stopper, ok := cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	if closer, ok := llm.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
}
