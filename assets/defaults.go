package assets

import (
	_ "embed"
)

// DefaultDangerousPatterns contains the embedded dangerous command patterns.
//
//go:embed defaults/dangerous_patterns.txt
var DefaultDangerousPatterns []byte

// DefaultSafePatterns contains the embedded safe command patterns.
//
//go:embed defaults/safe_patterns.txt
var DefaultSafePatterns []byte
