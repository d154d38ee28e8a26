package config

import "time"

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region         string
	ModelID        string
	MaxTokens      int
	Temperature    float32
	TopP           float32
	MaxPromptBytes int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey         string
	ModelName      string
	MaxTokens      int
	Temperature    float32
	TopP           float32
	MaxPromptBytes int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	ModelName      string
	MaxTokens      int
	Temperature    float32
	TopP           float32
	MaxPromptBytes int
}

// CategorizeConfig controls batched LLM categorization
type CategorizeConfig struct {
	Enabled        bool
	BatchSize      int
	Delay          time.Duration
	PreviewChars   int
	RequestTimeout time.Duration
}

// WebsiteConfig controls homepage lookups for company names
type WebsiteConfig struct {
	Enabled      bool
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// CompanyConfig controls domain to company resolution
type CompanyConfig struct {
	DomainsFile string
	MemoSize    int
}

// CacheConfig represents the website lookup cache configuration
type CacheConfig struct {
	Type             string
	MaxEntries       int
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	RedisURL         string
}

// StoreConfig represents the contact store configuration
type StoreConfig struct {
	Type       string
	SQLitePath string
}

// SourceConfig selects and limits the mailbox reader
type SourceConfig struct {
	Type       string
	MboxPath   string
	TakeoutDir string
	Days       int
	MaxEmails  int
}

// GmailConfig represents the Gmail API reader configuration
type GmailConfig struct {
	CredentialsPath string
	TokenPath       string
	Query           string
	Delay           time.Duration
}

// IngestConfig represents the SMTP ingest server configuration
type IngestConfig struct {
	ListenAddress   string
	RelayAddress    string
	ContactHeader   string
	ProcessTimeout  time.Duration
	MaxMessageBytes int64
}

// LoggingConfig represents the logger configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:         c.GetString("bedrock.region"),
		ModelID:        c.GetString("bedrock.model_id"),
		MaxTokens:      c.GetInt("bedrock.max_tokens"),
		Temperature:    float32(c.GetFloat64("bedrock.temperature")),
		TopP:           float32(c.GetFloat64("bedrock.top_p")),
		MaxPromptBytes: c.GetInt("bedrock.max_prompt_bytes"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:         c.GetString("gemini.api_key"),
		ModelName:      c.GetString("gemini.model_name"),
		MaxTokens:      c.GetInt("gemini.max_tokens"),
		Temperature:    float32(c.GetFloat64("gemini.temperature")),
		TopP:           float32(c.GetFloat64("gemini.top_p")),
		MaxPromptBytes: c.GetInt("gemini.max_prompt_bytes"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:         c.GetString("openai.api_key"),
		BaseURL:        c.GetString("openai.base_url"),
		ModelName:      c.GetString("openai.model_name"),
		MaxTokens:      c.GetInt("openai.max_tokens"),
		Temperature:    float32(c.GetFloat64("openai.temperature")),
		TopP:           float32(c.GetFloat64("openai.top_p")),
		MaxPromptBytes: c.GetInt("openai.max_prompt_bytes"),
	}
}

// GetCategorize returns the categorization configuration
func (c *Config) GetCategorize() CategorizeConfig {
	return CategorizeConfig{
		Enabled:        c.GetBool("categorize.enabled"),
		BatchSize:      c.GetInt("categorize.batch_size"),
		Delay:          c.duration("categorize.delay"),
		PreviewChars:   c.GetInt("categorize.preview_chars"),
		RequestTimeout: c.duration("categorize.request_timeout"),
	}
}

// GetWebsite returns the website lookup configuration
func (c *Config) GetWebsite() WebsiteConfig {
	return WebsiteConfig{
		Enabled:      c.GetBool("website.enabled"),
		Timeout:      c.duration("website.timeout"),
		UserAgent:    c.GetString("website.user_agent"),
		MaxBodyBytes: c.v.GetInt64("website.max_body_bytes"),
	}
}

// GetCompany returns the company resolution configuration
func (c *Config) GetCompany() CompanyConfig {
	return CompanyConfig{
		DomainsFile: c.GetString("company.domains_file"),
		MemoSize:    c.GetInt("company.memo_size"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		MaxEntries:       c.GetInt("cache.max_entries"),
		TTL:              c.duration("cache.ttl"),
		CleanupFrequency: c.duration("cache.cleanup_frequency"),
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		RedisURL:         c.GetString("cache.redis_url"),
	}
}

// GetStore returns the contact store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:       c.GetString("store.type"),
		SQLitePath: c.GetString("store.sqlite_path"),
	}
}

// GetSource returns the mailbox source configuration
func (c *Config) GetSource() SourceConfig {
	return SourceConfig{
		Type:       c.GetString("source.type"),
		MboxPath:   c.GetString("source.mbox_path"),
		TakeoutDir: c.GetString("source.takeout_dir"),
		Days:       c.GetInt("source.days"),
		MaxEmails:  c.GetInt("source.max_emails"),
	}
}

// GetGmail returns the Gmail configuration
func (c *Config) GetGmail() GmailConfig {
	return GmailConfig{
		CredentialsPath: c.GetString("gmail.credentials_path"),
		TokenPath:       c.GetString("gmail.token_path"),
		Query:           c.GetString("gmail.query"),
		Delay:           c.duration("gmail.delay"),
	}
}

// GetWhitelist returns sender domains and addresses excluded from extraction
func (c *Config) GetWhitelist() []string {
	return c.GetStringSlice("whitelist.senders")
}

// GetIngest returns the SMTP ingest configuration
func (c *Config) GetIngest() IngestConfig {
	return IngestConfig{
		ListenAddress:   c.GetString("ingest.listen_address"),
		RelayAddress:    c.GetString("ingest.relay_address"),
		ContactHeader:   c.GetString("ingest.contact_header"),
		ProcessTimeout:  c.duration("ingest.process_timeout"),
		MaxMessageBytes: c.v.GetInt64("ingest.max_message_bytes"),
	}
}

// GetLogging returns the logging configuration
func (c *Config) GetLogging() LoggingConfig {
	return LoggingConfig{
		Level:  c.GetString("logging.level"),
		Format: c.GetString("logging.format"),
	}
}
