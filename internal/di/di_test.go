package di_test

import (
	"path/filepath"
	"testing"

	"github.com/mikey/pr-contact-miner/internal/categorize"
	"github.com/mikey/pr-contact-miner/internal/config"
	"github.com/mikey/pr-contact-miner/internal/core"
	"github.com/mikey/pr-contact-miner/internal/di"
	"github.com/mikey/pr-contact-miner/internal/pipeline"
)

func TestBuildCLIContainer_Defaults(t *testing.T) {
	db := filepath.Join(t.TempDir(), "contacts.db")
	flags, err := di.ParseFlags([]string{"--db", db, "--test", "--days", "30"})
	if err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		t.Fatalf("build container: %v", err)
	}

	err = container.Invoke(func(
		cfg *config.Config,
		runner *pipeline.Runner,
		dispatcher *categorize.Dispatcher,
		llm core.LLMClient,
		store core.ContactStore,
	) {
		defer store.Close()

		if runner == nil {
			t.Error("expected a runner")
		}
		if dispatcher != nil || llm != nil {
			t.Error("categorization should be disabled without a provider")
		}
		src := cfg.GetSource()
		if src.MaxEmails != 5 || src.Days != 30 {
			t.Errorf("unexpected source config %+v", src)
		}
		if got := cfg.GetStore().SQLitePath; got != db {
			t.Errorf("expected db flag to win, got %q", got)
		}
	})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
}

func TestBuildCLIContainer_RejectsCategorizeWithoutProvider(t *testing.T) {
	flags, err := di.ParseFlags([]string{"--categorize", "--db", filepath.Join(t.TempDir(), "c.db")})
	if err != nil {
		t.Fatal(err)
	}
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		t.Fatal(err)
	}
	if err := container.Invoke(func(*config.Config) {}); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestParseFlags_Unknown(t *testing.T) {
	if _, err := di.ParseFlags([]string{"--no-such-flag"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}
