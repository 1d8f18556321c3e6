// Package safety implements the pattern store and the risk classifier.
//
// Two ordered pattern lists (dangerous, safe) are loaded from plain-text
// files, one regex per line. Pattern order is preserved; the first match in
// a list wins. The loaded set is immutable; picking up edited files requires
// an explicit reload.
package safety

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/doeshing/tai-go/assets"
	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/ports"
)

const (
	CategoryDangerous = "dangerous"
	CategorySafe      = "safe"
)

// Pattern is one compiled rule from a pattern source.
type Pattern struct {
	Regex    *regexp.Regexp
	Label    string
	Category string
	Source   string
}

// PatternSet holds both ordered pattern lists.
type PatternSet struct {
	Dangerous []Pattern
	Safe      []Pattern
	// Warnings collects non-fatal load problems (unreadable source,
	// malformed regex) for user-facing reporting.
	Warnings []string
}

// Load reads both pattern sources. A missing file falls back to the embedded
// defaults so that a deleted custom file never disables safety analysis. An
// unreadable file reports a ConfigError warning and likewise degrades to the
// defaults. Malformed regexes are skipped with a warning, never fatal.
func Load(dangerousPath, safePath string, log ports.Logger) PatternSet {
	set := PatternSet{}
	set.Dangerous = loadSource(dangerousPath, CategoryDangerous, assets.DefaultDangerousPatterns, &set, log)
	set.Safe = loadSource(safePath, CategorySafe, assets.DefaultSafePatterns, &set, log)
	return set
}

// LoadDefaults compiles only the embedded pattern lists.
func LoadDefaults(log ports.Logger) PatternSet {
	set := PatternSet{}
	set.Dangerous = compileLines(string(assets.DefaultDangerousPatterns), CategoryDangerous, "builtin", &set, log)
	set.Safe = compileLines(string(assets.DefaultSafePatterns), CategorySafe, "builtin", &set, log)
	return set
}

func loadSource(path, category string, defaults []byte, set *PatternSet, log ports.Logger) []Pattern {
	if path == "" {
		return compileLines(string(defaults), category, "builtin", set, log)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			cfgErr := &domain.ConfigError{Source: path, Err: err}
			set.Warnings = append(set.Warnings, cfgErr.Error())
			if log != nil {
				log.Warn("pattern source unreadable, using built-in defaults", map[string]interface{}{
					"path": path, "error": err.Error(),
				})
			}
		}
		return compileLines(string(defaults), category, "builtin", set, log)
	}
	return compileLines(string(data), category, path, set, log)
}

func compileLines(text, category, source string, set *PatternSet, log ports.Logger) []Pattern {
	var patterns []Pattern
	for i, raw := range strings.Split(text, "\n") {
		expr, label := parseLine(raw)
		if expr == "" {
			continue
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			warning := fmt.Sprintf("%s line %d: invalid pattern %q: %v", source, i+1, expr, err)
			set.Warnings = append(set.Warnings, warning)
			if log != nil {
				log.Warn("skipping malformed pattern", map[string]interface{}{
					"source": source, "line": i + 1, "pattern": expr,
				})
			}
			continue
		}
		if label == "" {
			label = expr
		}
		patterns = append(patterns, Pattern{
			Regex:    re,
			Label:    label,
			Category: category,
			Source:   source,
		})
	}
	return patterns
}

// parseLine splits a source line into the regex expression and its label.
// Full-line comments and blank lines yield an empty expression. A trailing
// " # ..." comment is stripped from the expression and becomes the label,
// so escaped or character-class hashes inside a regex survive.
func parseLine(raw string) (expr, label string) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", ""
	}
	if idx := commentStart(line); idx >= 0 {
		label = strings.TrimSpace(strings.TrimPrefix(line[idx+1:], "#"))
		line = strings.TrimSpace(line[:idx])
	}
	return line, label
}

// commentStart locates the " #" introducing a trailing comment, ignoring
// hashes inside character classes and escaped characters. Returns -1 when
// the line has no comment.
func commentStart(line string) int {
	depth := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '#':
			if depth == 0 && i > 0 && line[i-1] == ' ' {
				return i - 1
			}
		}
	}
	return -1
}
