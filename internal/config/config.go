package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// CONTACT_MINER_CATEGORIZE_BATCH_SIZE for categorize.batch_size
const EnvPrefix = "CONTACT_MINER"

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// Options selects where configuration is loaded from
type Options struct {
	// ConfigFile is an explicit YAML file; empty searches the default paths
	ConfigFile string
	// EnvFile is a dotenv file loaded before the environment is read; empty
	// tries ./.env and ignores it when missing
	EnvFile string
}

// New creates a new configuration instance
func New(opts Options) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("/etc/pr-contact-miner/")
		v.AddConfigPath("$HOME/.pr-contact-miner")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// BindFlags binds command line flags to configuration keys. keys maps a
// config key to a flag name; flags that were not set on the command line
// leave the configured value in place.
func (c *Config) BindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := flags.Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q for key %s", name, key)
		}
		if err := c.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}
	return nil
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// LLM provider defaults
	v.SetDefault("llm.provider", "none")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.max_tokens", 4096)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_prompt_bytes", 65536)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 4096)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_prompt_bytes", 65536)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 4096)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_prompt_bytes", 65536)

	// Categorization defaults
	v.SetDefault("categorize.enabled", false)
	v.SetDefault("categorize.batch_size", 10)
	v.SetDefault("categorize.delay", "500ms")
	v.SetDefault("categorize.preview_chars", 300)
	v.SetDefault("categorize.request_timeout", "60s")

	// Website lookup defaults
	v.SetDefault("website.enabled", false)
	v.SetDefault("website.timeout", "10s")
	v.SetDefault("website.user_agent", "Mozilla/5.0 (compatible; PRContactsBot/1.0)")
	v.SetDefault("website.max_body_bytes", 1048576)

	// Company resolution defaults
	v.SetDefault("company.domains_file", "")
	v.SetDefault("company.memo_size", 500)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.max_entries", 500)
	v.SetDefault("cache.ttl", "720h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "./domain_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/contact_miner")
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")

	// Contact store defaults
	v.SetDefault("store.type", "sqlite")
	v.SetDefault("store.sqlite_path", "./contacts.db")

	// Source defaults
	v.SetDefault("source.type", "mbox")
	v.SetDefault("source.mbox_path", "")
	v.SetDefault("source.takeout_dir", ".")
	v.SetDefault("source.days", 0)
	v.SetDefault("source.max_emails", 0)

	// Gmail defaults
	v.SetDefault("gmail.credentials_path", "credentials.json")
	v.SetDefault("gmail.token_path", "token.json")
	v.SetDefault("gmail.query", "")
	v.SetDefault("gmail.delay", "100ms")

	// Whitelist defaults
	v.SetDefault("whitelist.senders", []string{})

	// SMTP ingest defaults
	v.SetDefault("ingest.listen_address", "127.0.0.1:10026")
	v.SetDefault("ingest.relay_address", "")
	v.SetDefault("ingest.contact_header", "X-PR-Contact")
	v.SetDefault("ingest.process_timeout", "30s")
	v.SetDefault("ingest.max_message_bytes", 31457280)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// durationKeys are validated up front so typed getters can ignore parse errors
var durationKeys = []string{
	"categorize.delay",
	"categorize.request_timeout",
	"website.timeout",
	"cache.ttl",
	"cache.cleanup_frequency",
	"gmail.delay",
	"ingest.process_timeout",
}

// Validate checks values that typed getters cannot report errors for
func (c *Config) Validate() error {
	for _, key := range durationKeys {
		if _, err := c.GetDuration(key); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", key, err)
		}
	}

	switch p := c.GetLLM().Provider; p {
	case "none", "openai", "gemini", "bedrock":
	default:
		return fmt.Errorf("unsupported LLM provider: %s", p)
	}

	if c.GetCategorize().Enabled && c.GetLLM().Provider == "none" {
		return fmt.Errorf("categorize.enabled requires llm.provider to be set")
	}
	if c.GetCategorize().BatchSize <= 0 {
		return fmt.Errorf("categorize.batch_size must be positive")
	}
	return nil
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// duration is GetDuration for keys already checked by Validate
func (c *Config) duration(key string) time.Duration {
	d, _ := c.GetDuration(key)
	return d
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
