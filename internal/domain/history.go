package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// HistoryEntry is one record in the append-only command ledger. Entries are
// never mutated or deleted by the core, only appended and read back.
type HistoryEntry struct {
	Sequence  int64      `json:"sequence"`
	Timestamp time.Time  `json:"timestamp"`
	Prompt    string     `json:"prompt"`
	Command   string     `json:"command"`
	Origin    StepOrigin `json:"origin"`
	Verdict   Verdict    `json:"verdict"`
	ExitCode  int        `json:"exit_code"`
	Model     string     `json:"model"`
}

// CacheKey derives the cache key for a prompt/model pair.
func CacheKey(prompt, model string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return hex.EncodeToString(sum[:16])
}

// CacheEntry stores cached provider responses.
type CacheEntry struct {
	Key       string    `json:"key"`
	Prompt    string    `json:"prompt"`
	Commands  []string  `json:"commands"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}
