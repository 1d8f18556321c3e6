package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/ports"
)

// ChatService holds a free-form conversation with the model. The transcript
// persists across invocations; nothing in a chat is ever executed.
type ChatService struct {
	ConfigProvider   ports.ConfigProvider
	ContextCollector ports.ContextCollector
	ProviderFactory  ports.ProviderFactory
	Store            ports.ChatStore
	Logger           ports.Logger
}

// Send appends the user message to the stored transcript, asks the model for
// a reply, and persists both turns.
func (s *ChatService) Send(ctx context.Context, prompt, modelOverride string) (string, error) {
	if s.ConfigProvider == nil || s.ProviderFactory == nil || s.Store == nil || s.Logger == nil {
		return "", errors.New("services.ChatService dependencies not satisfied")
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}

	modelDef, err := pickModel(cfg, modelOverride)
	if err != nil {
		return "", err
	}
	provider, err := s.ProviderFactory.ForModel(modelDef)
	if err != nil {
		return "", fmt.Errorf("provider init: %w", err)
	}

	transcript, err := s.Store.Load()
	if err != nil {
		s.Logger.Warn("chat transcript unreadable, starting fresh", map[string]interface{}{"error": err.Error()})
		transcript = nil
	}

	transcript = trimTranscript(transcript, domain.DefaultChatWordBudget)
	transcript = ensureSystemMessage(ctx, transcript, s.ContextCollector, cfg)
	transcript = append(transcript, domain.PromptMessage{Role: "user", Content: prompt})

	reqCtx, cancel := providerContext(ctx, cfg)
	defer cancel()
	aiResp, err := provider.Generate(reqCtx, ports.ProviderRequest{
		Task:     ports.TaskChat,
		Prompt:   prompt,
		Messages: transcript,
	})
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}

	transcript = append(transcript, domain.PromptMessage{Role: "assistant", Content: aiResp.Text})
	if err := s.Store.Save(transcript); err != nil {
		s.Logger.Warn("chat transcript save failed", map[string]interface{}{"error": err.Error()})
	}
	return aiResp.Text, nil
}

// Reset discards the stored transcript.
func (s *ChatService) Reset() error {
	if s.Store == nil {
		return errors.New("chat store unavailable")
	}
	return s.Store.Clear()
}

// trimTranscript drops the oldest non-system turns until the transcript fits
// the word budget, so a long-running conversation stays within the model's
// attention.
func trimTranscript(transcript []domain.PromptMessage, budget int) []domain.PromptMessage {
	for wordCount(transcript) > budget && len(transcript) > 1 {
		transcript = append(transcript[:1], transcript[2:]...)
	}
	return transcript
}

func wordCount(transcript []domain.PromptMessage) int {
	total := 0
	for _, msg := range transcript {
		total += len(strings.Fields(msg.Content))
	}
	return total
}

// ensureSystemMessage makes sure the transcript opens with the assistant
// instructions. Older transcripts keep their original system message.
func ensureSystemMessage(ctx context.Context, transcript []domain.PromptMessage, collector ports.ContextCollector, cfg domain.Config) []domain.PromptMessage {
	if len(transcript) > 0 && transcript[0].Role == "system" {
		return transcript
	}

	osName := "an unknown OS"
	if collector != nil {
		if snapshot, err := collector.Collect(ctx, cfg); err == nil && snapshot.OS != "" {
			osName = snapshot.OS
		}
	}
	system := domain.PromptMessage{
		Role: "system",
		Content: fmt.Sprintf(
			"You are a helpful assistant. Answer as concisely as possible. This machine is running %s.",
			osName,
		),
	}
	return append([]domain.PromptMessage{system}, transcript...)
}
