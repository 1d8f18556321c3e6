package history

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/pkg/filesystem"
	"github.com/doeshing/tai-go/internal/ports"
)

// FileStore appends ledger entries to a jsonl file. It serves as the
// fallback backend when the SQLite database cannot be opened, and as the
// primary backend when configured.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a ledger under ~/.tai/history/history.jsonl.
func NewFileStore() *FileStore {
	return &FileStore{
		path: filepath.Join(filesystem.ConfigDir(), "history", "history.jsonl"),
	}
}

// NewFileStoreAt creates a ledger at an explicit path (used in tests).
func NewFileStoreAt(path string) *FileStore {
	return &FileStore{path: path}
}

// Append writes one entry, assigning the next sequence number.
func (f *FileStore) Append(entry domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	entries, err := f.readAll()
	if err != nil {
		return err
	}
	entry.Sequence = nextSequence(entries)
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = file.Write(data)
	return err
}

// List returns up to limit entries, most recent first.
func (f *FileStore) List(limit int) ([]domain.HistoryEntry, error) {
	entries, err := f.readAll()
	if err != nil {
		return nil, err
	}
	out := reverse(entries)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get fetches one entry by sequence number.
func (f *FileStore) Get(sequence int64) (domain.HistoryEntry, error) {
	entries, err := f.readAll()
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	for _, entry := range entries {
		if entry.Sequence == sequence {
			return entry, nil
		}
	}
	return domain.HistoryEntry{}, ErrNotFound
}

// Clear removes the ledger file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ExportJSON copies the ledger to dest as jsonl, oldest first.
func (f *FileStore) ExportJSON(dest string) error {
	entries, err := f.readAll()
	if err != nil {
		return err
	}
	return writeJSONL(dest, entries)
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) readAll() ([]domain.HistoryEntry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	var entries []domain.HistoryEntry
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		var entry domain.HistoryEntry
		if err := json.Unmarshal(line, &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func nextSequence(entries []domain.HistoryEntry) int64 {
	var max int64
	for _, entry := range entries {
		if entry.Sequence > max {
			max = entry.Sequence
		}
	}
	return max + 1
}

func writeJSONL(dest string, entries []domain.HistoryEntry) error {
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}

var _ ports.HistoryLedger = (*FileStore)(nil)
