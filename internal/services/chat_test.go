package services

import (
	"context"
	"strings"
	"testing"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/pkg/logger"
)

func newChatService(provider *stubProvider, store *stubChatStore) *ChatService {
	return &ChatService{
		ConfigProvider:   stubConfigProvider{cfg: queryConfig()},
		ContextCollector: &stubContextCollector{snapshot: domain.ContextSnapshot{OS: "linux"}},
		ProviderFactory:  stubFactory{provider: provider},
		Store:            store,
		Logger:           logger.NewStd(false),
	}
}

func TestChatInsertsSystemMessageOnce(t *testing.T) {
	provider := &stubProvider{text: "hi there"}
	store := &stubChatStore{}
	svc := newChatService(provider, store)

	if _, err := svc.Send(context.Background(), "hello", ""); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if _, err := svc.Send(context.Background(), "and again", ""); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	systems := 0
	for _, msg := range store.saved {
		if msg.Role == "system" {
			systems++
		}
	}
	if systems != 1 {
		t.Fatalf("system messages = %d, want exactly 1", systems)
	}
	if store.saved[0].Role != "system" || !strings.Contains(store.saved[0].Content, "linux") {
		t.Errorf("transcript head = %+v, want system message naming the OS", store.saved[0])
	}
}

func TestChatPersistsBothTurns(t *testing.T) {
	provider := &stubProvider{text: "hi there"}
	store := &stubChatStore{}
	svc := newChatService(provider, store)

	reply, err := svc.Send(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if reply != "hi there" {
		t.Errorf("reply = %q, want the model text", reply)
	}

	n := len(store.saved)
	if n < 2 {
		t.Fatalf("saved transcript has %d turns, want at least user and assistant", n)
	}
	if store.saved[n-2].Role != "user" || store.saved[n-2].Content != "hello" {
		t.Errorf("turn = %+v, want the user message", store.saved[n-2])
	}
	if store.saved[n-1].Role != "assistant" || store.saved[n-1].Content != "hi there" {
		t.Errorf("turn = %+v, want the assistant reply", store.saved[n-1])
	}
}

func TestChatTrimsOldTurnsWithinWordBudget(t *testing.T) {
	provider := &stubProvider{text: "ok"}
	store := &stubChatStore{}

	longTurn := strings.Repeat("word ", 600)
	store.loaded = []domain.PromptMessage{
		{Role: "system", Content: "instructions"},
		{Role: "user", Content: "oldest " + longTurn},
		{Role: "assistant", Content: longTurn},
		{Role: "user", Content: longTurn},
		{Role: "assistant", Content: longTurn},
	}

	svc := newChatService(provider, store)
	if _, err := svc.Send(context.Background(), "newest question", ""); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	sent := provider.requests[0].Messages
	if sent[0].Role != "system" {
		t.Fatalf("transcript head = %+v, want system message to survive trimming", sent[0])
	}
	for _, msg := range sent {
		if strings.HasPrefix(msg.Content, "oldest") {
			t.Error("oldest turn survived trimming")
		}
	}
	budget := domain.DefaultChatWordBudget
	if count := wordCount(sent[:len(sent)-1]); count > budget {
		t.Errorf("transcript words = %d, want at most %d before the new turn", count, budget)
	}
}

func TestChatResetClearsStore(t *testing.T) {
	store := &stubChatStore{loaded: []domain.PromptMessage{{Role: "user", Content: "hello"}}}
	svc := newChatService(&stubProvider{}, store)

	if err := svc.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if !store.cleared {
		t.Error("store was not cleared")
	}
}

type stubChatStore struct {
	loaded  []domain.PromptMessage
	saved   []domain.PromptMessage
	cleared bool
}

func (s *stubChatStore) Load() ([]domain.PromptMessage, error) {
	if s.saved != nil {
		return s.saved, nil
	}
	return s.loaded, nil
}

func (s *stubChatStore) Save(transcript []domain.PromptMessage) error {
	s.saved = transcript
	return nil
}

func (s *stubChatStore) Clear() error {
	s.cleared = true
	s.loaded = nil
	s.saved = nil
	return nil
}
