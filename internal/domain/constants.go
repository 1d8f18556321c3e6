package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
)

// Limit constants
const (
	// DefaultMaxCorrectAttempts bounds the auto-correct retry loop
	DefaultMaxCorrectAttempts = 2
	// DefaultAlternatives is how many alternative commands to offer on decline
	DefaultAlternatives = 5
	// DefaultMaxCacheEntries is the maximum number of cache entries
	DefaultMaxCacheEntries = 100
	// DefaultContextMaxFiles caps the directory listing sent as context
	DefaultContextMaxFiles = 20
	// DefaultContextCap limits extra context reports, in bytes
	DefaultContextCap = 3000
)

// Chat constants
const (
	// DefaultChatHistoryLimit is how many messages the chat transcript keeps
	DefaultChatHistoryLimit = 50
	// DefaultChatWordBudget trims the transcript sent to the model
	DefaultChatWordBudget = 2000
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
	// DefaultHistoryRetainDays is the default number of days to retain history
	DefaultHistoryRetainDays = 90
)

// Model configuration constants
const (
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 256
)
