package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/pr-contact-miner/internal/config"
	"github.com/mikey/pr-contact-miner/internal/core"
	"github.com/mikey/pr-contact-miner/internal/di"
	"github.com/mikey/pr-contact-miner/internal/ports"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	var opts config.Options
	fs := pflag.NewFlagSet("contact-ingest", pflag.ContinueOnError)
	fs.StringVar(&opts.ConfigFile, "config", "", "Path to YAML config file")
	fs.StringVar(&opts.EnvFile, "env-file", "", "Path to dotenv file (default ./.env if present)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Invalid arguments: %v\n", err)
		os.Exit(2)
	}

	// Build the dependency injection container
	container, err := di.BuildContainer(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	ingestor ports.Ingestor,
	store core.ContactStore,
	cache core.DomainCache,
	llm core.LLMClient,
) error {
	defer logger.Sync()

	if err := ingestor.Start(); err != nil {
		logger.Error("Failed to start ingestor", zap.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := ingestor.Stop(); err != nil {
		logger.Error("Failed to stop ingestor", zap.Error(err))
	}

	if err := store.Close(); err != nil {
		logger.Error("Failed to close contact store", zap.Error(err))
	}
	if stopper, ok := cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	if closer, ok := llm.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
