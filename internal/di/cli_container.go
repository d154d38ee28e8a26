package di

import (
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/pr-contact-miner/internal/adapters/source"
	"github.com/mikey/pr-contact-miner/internal/config"
	"github.com/mikey/pr-contact-miner/internal/factory"
	"github.com/mikey/pr-contact-miner/internal/logging"
)

// testModeEmails caps a --test run
const testModeEmails = 5

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	ConfigFile string
	EnvFile    string

	// Actions other than the default extraction run
	Export             string
	Inspect            string
	DiscoverCategories bool

	SkipCategorization bool
	Test               bool
	Verbose            bool
	JSONLog            bool

	flags *pflag.FlagSet
}

// flagKeys maps configuration keys to the flags that override them
var flagKeys = map[string]string{
	"llm.provider":          "provider",
	"source.type":           "source",
	"source.mbox_path":      "mbox-path",
	"source.takeout_dir":    "takeout-dir",
	"source.days":           "days",
	"source.max_emails":     "max-emails",
	"categorize.enabled":    "categorize",
	"categorize.batch_size": "batch-size",
	"website.enabled":       "website",
	"store.sqlite_path":     "db",
}

// ParseFlags parses command line arguments (without the program name)
func ParseFlags(args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := pflag.NewFlagSet("contact-miner", pflag.ContinueOnError)

	// Configuration sources
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to YAML config file")
	fs.StringVar(&flags.EnvFile, "env-file", "", "Path to dotenv file (default ./.env if present)")

	// Values bound to configuration keys
	fs.String("provider", "none", "LLM provider (none, openai, gemini, bedrock)")
	fs.String("source", "mbox", "Email source (mbox, gmail)")
	fs.String("mbox-path", "", "Path to mbox file (auto-detected under --takeout-dir if empty)")
	fs.String("takeout-dir", ".", "Directory searched for a Google Takeout mbox")
	fs.Int("days", 0, "Only process emails from the last N days (0 for all)")
	fs.Int("max-emails", 0, "Maximum number of emails to process (0 for all)")
	fs.Bool("categorize", false, "Categorize emails with the LLM provider")
	fs.Int("batch-size", 10, "Emails per categorization request")
	fs.Bool("website", false, "Look up company names on sender websites")
	fs.String("db", "./contacts.db", "Path to the SQLite contact database")

	// Actions
	fs.StringVar(&flags.Export, "export", "", "Export stored contacts to a CSV file (- for stdout) and exit")
	fs.StringVar(&flags.Inspect, "inspect", "", "Extract the contact from one RFC 822 file (- for stdin) without storing it")
	fs.BoolVar(&flags.DiscoverCategories, "discover-categories", false, "Suggest categories from a sample of emails")
	fs.BoolVar(&flags.SkipCategorization, "skip-categorization", false, "Disable categorization even if configured")
	fs.BoolVar(&flags.Test, "test", false, "Process only 5 emails")
	fs.BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	flags.flags = fs
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		return configFromFlags(flags, logger)
	}); err != nil {
		return nil, err
	}

	if err := provideComponents(container); err != nil {
		return nil, err
	}

	// Register source factory with an interactive Gmail consent prompt
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *factory.SourceFactory {
		return factory.NewSourceFactory(cfg, logger, source.TerminalPrompt(os.Stdin, os.Stderr))
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// configFromFlags loads file and environment configuration, then lets flags
// given on the command line win
func configFromFlags(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
	cfg, err := config.New(config.Options{ConfigFile: flags.ConfigFile, EnvFile: flags.EnvFile})
	if err != nil {
		return nil, err
	}
	if used := cfg.GetViper().ConfigFileUsed(); used != "" {
		logger.Info("Loaded configuration from file", zap.String("file", used))
	}

	if flags.flags != nil {
		if err := cfg.BindFlags(flags.flags, flagKeys); err != nil {
			return nil, err
		}
	}

	v := cfg.GetViper()
	if flags.SkipCategorization {
		v.Set("categorize.enabled", false)
	}
	if flags.Test {
		v.Set("source.max_emails", testModeEmails)
	}
	if flags.Inspect != "" {
		// inspection never touches the database
		v.Set("store.type", "memory")
	}

	return cfg, cfg.Validate()
}
