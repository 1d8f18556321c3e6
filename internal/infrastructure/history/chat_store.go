package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/pkg/filesystem"
	"github.com/doeshing/tai-go/internal/ports"
)

// FileChatStore persists the chat transcript as a JSON array. Only the most
// recent turns are kept, so the file stays small.
type FileChatStore struct {
	path  string
	limit int
	mu    sync.Mutex
}

// NewFileChatStore creates a transcript store under ~/.tai/chat_history.json.
func NewFileChatStore() *FileChatStore {
	return &FileChatStore{
		path:  filepath.Join(filesystem.ConfigDir(), "chat_history.json"),
		limit: domain.DefaultChatHistoryLimit,
	}
}

// NewFileChatStoreAt creates a transcript store at an explicit path
// (used in tests).
func NewFileChatStoreAt(path string, limit int) *FileChatStore {
	return &FileChatStore{path: path, limit: limit}
}

// Load reads the stored transcript. A missing file is an empty transcript.
func (f *FileChatStore) Load() ([]domain.PromptMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var transcript []domain.PromptMessage
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, err
	}
	return transcript, nil
}

// Save writes the transcript, keeping only the newest turns when it exceeds
// the limit. The leading system message survives trimming.
func (f *FileChatStore) Save(transcript []domain.PromptMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.limit > 0 && len(transcript) > f.limit {
		kept := make([]domain.PromptMessage, 0, f.limit)
		if transcript[0].Role == "system" {
			kept = append(kept, transcript[0])
			kept = append(kept, transcript[len(transcript)-f.limit+1:]...)
		} else {
			kept = append(kept, transcript[len(transcript)-f.limit:]...)
		}
		transcript = kept
	}
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	data, err := json.Marshal(transcript)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, domain.SecureFilePermissions)
}

// Clear removes the transcript file.
func (f *FileChatStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

var _ ports.ChatStore = (*FileChatStore)(nil)
