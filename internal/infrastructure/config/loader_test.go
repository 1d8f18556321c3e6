package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/tai-go/internal/domain"
)

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("first-run config differs from defaults (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file was not written: %v", err)
	}
}

func TestLoadHydratesZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "safety:\n  mode: 1\nmodels:\n  - name: local\n    endpoint: http://localhost:11434/v1/chat/completions\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Safety.Mode != domain.SafetyAutoRunSafe {
		t.Fatalf("safety mode = %d, want 1", cfg.Safety.Mode)
	}
	if cfg.Preferences.DefaultModel != "local" {
		t.Fatalf("default model = %q, want first configured model", cfg.Preferences.DefaultModel)
	}
	if cfg.Safety.MaxCorrectAttempts != domain.DefaultMaxCorrectAttempts {
		t.Fatalf("max correct attempts not hydrated: %d", cfg.Safety.MaxCorrectAttempts)
	}
	if cfg.Preferences.TimeoutSeconds == 0 {
		t.Fatal("timeout not hydrated")
	}
}

func TestLoadMalformedYAMLIsConfigError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewFileLoader(path).Load(context.Background())
	var cfgErr *domain.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestInvalidSafetyModeFallsBackToAlwaysAsk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("safety:\n  mode: 7\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Safety.Mode != domain.SafetyAlwaysAsk {
		t.Fatalf("out-of-range safety mode must clamp to always-ask, got %d", cfg.Safety.Mode)
	}
}
