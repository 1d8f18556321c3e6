package history

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/doeshing/tai-go/internal/domain"
)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStoreAt(filepath.Join(t.TempDir(), "history.jsonl"))
}

func TestAppendAssignsMonotonicSequence(t *testing.T) {
	store := tempStore(t)
	for _, cmd := range []string{"ls", "pwd", "df -h"} {
		if err := store.Append(domain.HistoryEntry{Command: cmd, Origin: domain.OriginGenerated}); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}
	entries, err := store.List(0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	// Most recent first.
	if entries[0].Sequence != 3 || entries[0].Command != "df -h" {
		t.Fatalf("expected newest entry first, got %+v", entries[0])
	}
	if entries[2].Sequence != 1 || entries[2].Command != "ls" {
		t.Fatalf("expected oldest entry last, got %+v", entries[2])
	}
}

func TestListHonorsLimit(t *testing.T) {
	store := tempStore(t)
	for i := 0; i < 5; i++ {
		if err := store.Append(domain.HistoryEntry{Command: "echo hi"}); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := store.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Sequence != 5 {
		t.Fatalf("expected newest sequence 5, got %d", entries[0].Sequence)
	}
}

func TestGetBySequence(t *testing.T) {
	store := tempStore(t)
	if err := store.Append(domain.HistoryEntry{Command: "ls", Verdict: domain.VerdictSafe}); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(domain.HistoryEntry{Command: "pwd", Verdict: domain.VerdictSafe}); err != nil {
		t.Fatal(err)
	}
	entry, err := store.Get(2)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if entry.Command != "pwd" {
		t.Fatalf("Get(2) = %q, want pwd", entry.Command)
	}
	if _, err := store.Get(99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing sequence, got %v", err)
	}
}

func TestClearAndEmptyList(t *testing.T) {
	store := tempStore(t)
	if err := store.Append(domain.HistoryEntry{Command: "ls"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	entries, err := store.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty ledger, got %d entries", len(entries))
	}
	// Clearing an already-missing file is not an error.
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear error: %v", err)
	}
}

func TestExportJSONWritesOldestFirst(t *testing.T) {
	store := tempStore(t)
	for _, cmd := range []string{"first", "second"} {
		if err := store.Append(domain.HistoryEntry{Command: cmd}); err != nil {
			t.Fatal(err)
		}
	}
	dest := filepath.Join(t.TempDir(), "export.jsonl")
	if err := store.ExportJSON(dest); err != nil {
		t.Fatalf("ExportJSON error: %v", err)
	}
	exported := NewFileStoreAt(dest)
	entries, err := exported.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[1].Command != "first" {
		t.Fatalf("unexpected export contents: %+v", entries)
	}
}
