// Package history implements the append-only command ledger. Entries are
// only ever appended and read back; the core never mutates or deletes them.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/pkg/filesystem"
	"github.com/doeshing/tai-go/internal/ports"
)

// ErrNotFound is returned when a sequence number has no entry.
var ErrNotFound = fmt.Errorf("history entry not found")

// SQLiteStore persists the ledger in a SQLite database. The sequence number
// is the autoincrement row id, so it grows monotonically and is never reused.
type SQLiteStore struct {
	db            *sql.DB
	path          string
	mu            sync.Mutex
	retentionDays int
}

// NewSQLiteStore creates (or opens) the ~/.tai/history/history.db database.
// On open failure the returned store degrades to the JSONL FileStore.
func NewSQLiteStore(retentionDays int) *SQLiteStore {
	path := filepath.Join(filesystem.ConfigDir(), "history", "history.db")
	_ = os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path, retentionDays: retentionDays}
	}
	store := &SQLiteStore{db: db, path: path, retentionDays: retentionDays}
	if err := store.init(); err != nil {
		return &SQLiteStore{path: path, retentionDays: retentionDays}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS ledger (
		sequence INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT,
		prompt TEXT,
		command TEXT,
		origin TEXT,
		verdict TEXT,
		exit_code INTEGER,
		model TEXT
	);`)
	return err
}

func (s *SQLiteStore) fallback() *FileStore {
	return &FileStore{path: strings.TrimSuffix(s.path, ".db") + ".jsonl"}
}

// Append inserts a new ledger entry.
func (s *SQLiteStore) Append(entry domain.HistoryEntry) error {
	if s.db == nil {
		return s.fallback().Append(entry)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO ledger
		(timestamp, prompt, command, origin, verdict, exit_code, model)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Timestamp.Format(time.RFC3339),
		entry.Prompt,
		entry.Command,
		string(entry.Origin),
		string(entry.Verdict),
		entry.ExitCode,
		entry.Model,
	)
	if err != nil {
		return err
	}
	if s.retentionDays > 0 {
		return s.pruneOlderThan(s.retentionDays)
	}
	return nil
}

// List returns up to limit entries, most recent first.
func (s *SQLiteStore) List(limit int) ([]domain.HistoryEntry, error) {
	if s.db == nil {
		return s.fallback().List(limit)
	}
	query := "SELECT sequence, timestamp, prompt, command, origin, verdict, exit_code, model FROM ledger ORDER BY sequence DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Get fetches a single entry by sequence number.
func (s *SQLiteStore) Get(sequence int64) (domain.HistoryEntry, error) {
	if s.db == nil {
		return s.fallback().Get(sequence)
	}
	rows, err := s.db.Query(
		"SELECT sequence, timestamp, prompt, command, origin, verdict, exit_code, model FROM ledger WHERE sequence = ?",
		sequence,
	)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	defer rows.Close()
	entries, err := scanEntries(rows)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	if len(entries) == 0 {
		return domain.HistoryEntry{}, ErrNotFound
	}
	return entries[0], nil
}

// Clear deletes all ledger entries.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return s.fallback().Clear()
	}
	_, err := s.db.Exec("DELETE FROM ledger")
	return err
}

// ExportJSON writes the ledger to a jsonl file, oldest first.
func (s *SQLiteStore) ExportJSON(dest string) error {
	entries, err := s.List(0)
	if err != nil {
		return err
	}
	return writeJSONL(dest, reverse(entries))
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) pruneOlderThan(days int) error {
	_, err := s.db.Exec(
		"DELETE FROM ledger WHERE datetime(timestamp) < datetime('now', ?)",
		fmt.Sprintf("-%d days", days),
	)
	return err
}

func scanEntries(rows *sql.Rows) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		var ts, origin, verdict string
		if err := rows.Scan(&entry.Sequence, &ts, &entry.Prompt, &entry.Command, &origin, &verdict, &entry.ExitCode, &entry.Model); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.Timestamp = t
		}
		entry.Origin = domain.StepOrigin(origin)
		entry.Verdict = domain.Verdict(verdict)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func reverse(entries []domain.HistoryEntry) []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(entries))
	for i, entry := range entries {
		out[len(entries)-1-i] = entry
	}
	return out
}

var _ ports.HistoryLedger = (*SQLiteStore)(nil)
