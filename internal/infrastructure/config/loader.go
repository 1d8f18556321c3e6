// Package config loads YAML configuration from ~/.tai/config.yaml
// (overridable via TAI_CONFIG).
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/pkg/filesystem"
	"github.com/doeshing/tai-go/internal/ports"
)

// FileLoader implements ports.ConfigProvider backed by a YAML file.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is created with the
// defaults; an unreadable or malformed file surfaces a ConfigError so the
// caller can degrade deliberately rather than silently.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, &domain.ConfigError{Source: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, &domain.ConfigError{Source: path, Err: err}
			}
			return cfg, nil
		}
		return domain.Config{}, &domain.ConfigError{Source: path, Err: err}
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, &domain.ConfigError{Source: path, Err: err}
	}

	return hydrateDefaults(cfg), nil
}

// Path resolves the active configuration file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("TAI_CONFIG"); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.ConfigDir(), "config.yaml")
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// DefaultConfig is the configuration written on first run.
func DefaultConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Preferences: domain.Preferences{
			DefaultModel:   "gpt-4o-mini",
			Alternatives:   domain.DefaultAlternatives,
			TimeoutSeconds: 60,
		},
		Safety: domain.SafetySettings{
			Mode:               domain.SafetyAlwaysAsk,
			PatternsDir:        filepath.Join(filesystem.ConfigDir(), "patterns"),
			AutocorrectEnabled: true,
			MaxCorrectAttempts: domain.DefaultMaxCorrectAttempts,
		},
		Execution: domain.ExecutionSettings{
			Shell:            "auto",
			MultiStepEnabled: true,
		},
		History: domain.HistorySettings{
			Backend:    "sqlite",
			RetainDays: domain.DefaultHistoryRetainDays,
		},
		Context: domain.ContextSettings{
			IncludeFiles: true,
			MaxFiles:     domain.DefaultContextMaxFiles,
		},
		Models: []domain.ModelDefinition{
			{
				Name:       "gpt-4o-mini",
				Endpoint:   "https://api.openai.com/v1/chat/completions",
				AuthEnvVar: "OPENAI_API_KEY",
				ModelID:    "gpt-4o-mini",
				MaxTokens:  domain.DefaultMaxTokens,
			},
			{
				Name:       "claude-sonnet",
				Endpoint:   "https://api.anthropic.com/v1/messages",
				AuthEnvVar: "ANTHROPIC_API_KEY",
				ModelID:    "claude-3-5-sonnet-20240620",
				MaxTokens:  domain.DefaultMaxTokens,
			},
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.Preferences.DefaultModel == "" && len(cfg.Models) > 0 {
		cfg.Preferences.DefaultModel = cfg.Models[0].Name
	}
	if cfg.Preferences.Alternatives == 0 {
		cfg.Preferences.Alternatives = domain.DefaultAlternatives
	}
	if cfg.Preferences.TimeoutSeconds == 0 {
		cfg.Preferences.TimeoutSeconds = 60
	}
	if cfg.Safety.Mode != domain.SafetyAutoRunSafe {
		cfg.Safety.Mode = domain.SafetyAlwaysAsk
	}
	if cfg.Safety.MaxCorrectAttempts == 0 {
		cfg.Safety.MaxCorrectAttempts = domain.DefaultMaxCorrectAttempts
	}
	if cfg.Context.MaxFiles == 0 {
		cfg.Context.MaxFiles = domain.DefaultContextMaxFiles
	}
	if cfg.History.Backend == "" {
		cfg.History.Backend = "sqlite"
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
