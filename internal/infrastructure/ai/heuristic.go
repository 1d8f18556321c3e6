package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/ports"
)

// heuristicProvider is the offline fallback when no known endpoint is
// configured. It can suggest trivial commands but cannot correct failures.
type heuristicProvider struct {
	model domain.ModelDefinition
}

func newHeuristicProvider(model domain.ModelDefinition) ports.Provider {
	return &heuristicProvider{model: model}
}

func (p *heuristicProvider) Name() string {
	return "heuristic"
}

func (p *heuristicProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *heuristicProvider) Generate(_ context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	switch req.Task {
	case ports.TaskCorrect:
		return ports.ProviderResponse{}, fmt.Errorf("heuristic provider cannot correct commands")
	case ports.TaskExplain:
		return ports.ProviderResponse{Text: "No AI provider configured; explanation unavailable."}, nil
	case ports.TaskChat:
		return ports.ProviderResponse{}, fmt.Errorf("heuristic provider cannot chat")
	case ports.TaskChooseContext:
		return ports.ProviderResponse{Text: "-1"}, nil
	default:
		command := guessCommand(req.Prompt)
		return ports.ProviderResponse{
			Commands: []string{command},
			Text:     "Heuristic suggestion (offline fallback)",
		}, nil
	}
}

func guessCommand(prompt string) string {
	prompt = strings.ToLower(prompt)
	switch {
	case strings.Contains(prompt, "docker"):
		return "docker ps"
	case strings.Contains(prompt, "git status"):
		return "git status"
	case strings.Contains(prompt, "list") && strings.Contains(prompt, "file"):
		return "ls -la"
	case strings.Contains(prompt, "disk"):
		return "df -h"
	default:
		return "echo \"No AI provider configured\""
	}
}

var _ ports.Provider = (*heuristicProvider)(nil)
