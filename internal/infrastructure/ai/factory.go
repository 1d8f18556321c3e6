// Package ai implements the language-model collaborator: HTTP providers for
// Anthropic, OpenAI-compatible and Ollama endpoints, plus an offline
// heuristic fallback. The core treats providers as opaque command
// generators and never interprets model reasoning.
package ai

import (
	"net/http"
	"strings"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/ports"
)

// Factory builds providers from model definitions.
type Factory struct {
	httpClient *http.Client
}

// NewFactory creates a provider factory with a shared HTTP client.
func NewFactory() *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
	}
}

// ForModel implements ports.ProviderFactory.
func (f *Factory) ForModel(model domain.ModelDefinition) (ports.Provider, error) {
	switch inferProviderKind(model.Endpoint, model.Name) {
	case domain.ProviderKindAnthropic:
		return newHTTPProvider("anthropic", model, f.httpClient, anthropicAdapter()), nil
	case domain.ProviderKindOpenAI:
		return newHTTPProvider("openai", model, f.httpClient, openaiAdapter()), nil
	case domain.ProviderKindOllama:
		return newHTTPProvider("ollama", model, f.httpClient, ollamaAdapter()), nil
	default:
		return newHeuristicProvider(model), nil
	}
}

func inferProviderKind(endpoint string, name string) domain.ProviderKind {
	nameLower := strings.ToLower(name)

	switch {
	case strings.Contains(endpoint, "anthropic.com"):
		return domain.ProviderKindAnthropic
	case strings.Contains(endpoint, "openai.com") || strings.Contains(endpoint, "/chat/completions"):
		return domain.ProviderKindOpenAI
	case strings.Contains(nameLower, "ollama"), strings.Contains(endpoint, "11434"), strings.Contains(endpoint, "localhost"):
		return domain.ProviderKindOllama
	default:
		return domain.ProviderKindUnknown
	}
}

var _ ports.ProviderFactory = (*Factory)(nil)
