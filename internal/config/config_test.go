package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/pr-contact-miner/internal/config"
	"github.com/spf13/pflag"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.NewFromViper(config.NewEmptyViper())
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cat := cfg.GetCategorize()
	if cat.Enabled || cat.BatchSize != 10 || cat.Delay != 500*time.Millisecond || cat.PreviewChars != 300 || cat.RequestTimeout != time.Minute {
		t.Fatalf("unexpected categorize defaults: %+v", cat)
	}
	cache := cfg.GetCache()
	if cache.Type != "memory" || cache.MaxEntries != 500 || cache.TTL != 720*time.Hour {
		t.Fatalf("unexpected cache defaults: %+v", cache)
	}
	if got := cfg.GetWebsite(); got.Enabled || got.Timeout != 10*time.Second || got.MaxBodyBytes != 1048576 {
		t.Fatalf("unexpected website defaults: %+v", got)
	}
	if got := cfg.GetStore().SQLitePath; got != "./contacts.db" {
		t.Fatalf("unexpected store path %q", got)
	}
	if got := cfg.GetIngest().ListenAddress; got != "127.0.0.1:10026" {
		t.Fatalf("unexpected ingest address %q", got)
	}
	if got := cfg.GetLLM().Provider; got != "none" {
		t.Fatalf("unexpected provider %q", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*config.Config){
		"bad duration":      func(c *config.Config) { c.GetViper().Set("categorize.delay", "soon") },
		"unknown provider":  func(c *config.Config) { c.GetViper().Set("llm.provider", "mystery") },
		"categorize no llm": func(c *config.Config) { c.GetViper().Set("categorize.enabled", true) },
		"zero batch size":   func(c *config.Config) { c.GetViper().Set("categorize.batch_size", 0) },
	}
	for name, mutate := range cases {
		cfg := config.NewFromViper(config.NewEmptyViper())
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestNew_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()

	configFile := filepath.Join(dir, "config.yaml")
	yaml := "source:\n  days: 30\n  max_emails: 100\nwhitelist:\n  senders:\n    - mypaper.com\n    - editor@gmail.com\n"
	if err := os.WriteFile(configFile, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	envFile := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envFile, []byte("CONTACT_MINER_CACHE_TYPE=sqlite\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("CONTACT_MINER_CACHE_TYPE") })
	t.Setenv("CONTACT_MINER_SOURCE_MAX_EMAILS", "250")

	cfg, err := config.New(config.Options{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("days", 365, "")
	flags.String("store", "", "")
	if err := flags.Parse([]string{"--days", "7"}); err != nil {
		t.Fatal(err)
	}
	if err := cfg.BindFlags(flags, map[string]string{"source.days": "days", "store.sqlite_path": "store"}); err != nil {
		t.Fatalf("bind failed: %v", err)
	}

	src := cfg.GetSource()
	if src.Days != 7 {
		t.Fatalf("expected flag to win for days, got %d", src.Days)
	}
	if src.MaxEmails != 250 {
		t.Fatalf("expected env to win for max_emails, got %d", src.MaxEmails)
	}
	if got := cfg.GetCache().Type; got != "sqlite" {
		t.Fatalf("expected dotenv value, got %q", got)
	}
	if got := cfg.GetStore().SQLitePath; got != "./contacts.db" {
		t.Fatalf("unset flag should not override default, got %q", got)
	}
	if got := cfg.GetWhitelist(); len(got) != 2 || got[0] != "mypaper.com" {
		t.Fatalf("unexpected whitelist %v", got)
	}

	if err := cfg.BindFlags(flags, map[string]string{"source.days": "missing"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestNew_MissingExplicitFiles(t *testing.T) {
	if _, err := config.New(config.Options{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
		t.Fatal("expected error for missing config file")
	}
	if _, err := config.New(config.Options{EnvFile: filepath.Join(t.TempDir(), "nope.env")}); err == nil {
		t.Fatal("expected error for missing env file")
	}
}
