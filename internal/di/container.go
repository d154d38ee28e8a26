package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/pr-contact-miner/internal/categorize"
	"github.com/mikey/pr-contact-miner/internal/company"
	"github.com/mikey/pr-contact-miner/internal/config"
	"github.com/mikey/pr-contact-miner/internal/core"
	"github.com/mikey/pr-contact-miner/internal/country"
	"github.com/mikey/pr-contact-miner/internal/extractor"
	"github.com/mikey/pr-contact-miner/internal/factory"
	"github.com/mikey/pr-contact-miner/internal/logging"
	"github.com/mikey/pr-contact-miner/internal/pipeline"
	"github.com/mikey/pr-contact-miner/internal/ports"
	"github.com/mikey/pr-contact-miner/internal/utils"
	"github.com/mikey/pr-contact-miner/internal/website"
	"github.com/mikey/pr-contact-miner/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
// for the SMTP ingest service
func BuildContainer(opts config.Options) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		cfg, err := config.New(opts)
		if err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideComponents(container); err != nil {
		return nil, err
	}

	// Register ingestor
	if err := container.Provide(factory.NewIngestFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.IngestFactory, runner *pipeline.Runner) ports.Ingestor {
		return f.CreateIngestor(runner)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideComponents registers everything between configuration and the
// entry points. Optional parts (LLM client, classifier, dispatcher, cache,
// website fetcher) resolve to nil when disabled.
func provideComponents(container *dig.Container) error {
	providers := []any{
		utils.NewTextProcessor,
		factory.NewLLMFactory,
		factory.NewCacheFactory,
		factory.NewStoreFactory,
		country.NewDetector,

		func(f *factory.LLMFactory) (core.LLMClient, error) {
			return f.CreateLLMClient()
		},

		func(llm core.LLMClient, cfg *config.Config, text *utils.TextProcessor, logger *zap.Logger) *categorize.LLMClassifier {
			if llm == nil {
				return nil
			}
			return categorize.NewLLMClassifier(llm, text, cfg.GetCategorize().PreviewChars, logger)
		},

		func(classifier *categorize.LLMClassifier, cfg *config.Config, logger *zap.Logger) *categorize.Dispatcher {
			catCfg := cfg.GetCategorize()
			if classifier == nil || !catCfg.Enabled {
				return nil
			}
			return categorize.NewDispatcher(classifier, catCfg.Delay, catCfg.RequestTimeout, logger)
		},

		func(f *factory.CacheFactory) (core.DomainCache, error) {
			return f.CreateDomainCache()
		},

		func(cfg *config.Config, logger *zap.Logger) core.WebsiteFetcher {
			webCfg := cfg.GetWebsite()
			if !webCfg.Enabled {
				return nil
			}
			return website.NewHTTPFetcher(webCfg.Timeout, webCfg.UserAgent, webCfg.MaxBodyBytes, logger)
		},

		func(
			fetcher core.WebsiteFetcher,
			cache core.DomainCache,
			f *factory.CacheFactory,
			cfg *config.Config,
			logger *zap.Logger,
		) (*company.Resolver, error) {
			compCfg := cfg.GetCompany()
			resolver := company.NewResolver(fetcher, cache, f.GetCacheTTL(), compCfg.MemoSize, logger)
			if compCfg.DomainsFile != "" {
				domains, err := company.LoadDomainsFile(compCfg.DomainsFile)
				if err != nil {
					return nil, err
				}
				resolver.AddKnownDomains(domains)
				logger.Info("Loaded known domains", zap.String("file", compCfg.DomainsFile), zap.Int("count", len(domains)))
			}
			return resolver, nil
		},

		func(
			resolver *company.Resolver,
			detector *country.Detector,
			text *utils.TextProcessor,
			cfg *config.Config,
			logger *zap.Logger,
		) *extractor.Service {
			return extractor.NewService(resolver, detector, text, cfg.GetWebsite().Enabled, logger)
		},

		func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
			return whitelist.NewChecker(cfg.GetWhitelist(), logger)
		},

		func(f *factory.StoreFactory) (core.ContactStore, error) {
			return f.CreateContactStore()
		},

		func(
			svc *extractor.Service,
			store core.ContactStore,
			dispatcher *categorize.Dispatcher,
			checker *whitelist.Checker,
			cfg *config.Config,
			logger *zap.Logger,
		) *pipeline.Runner {
			return pipeline.NewRunner(svc, store, dispatcher, checker, cfg.GetCategorize().BatchSize, logger)
		},
	}

	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return err
		}
	}
	return nil
}
