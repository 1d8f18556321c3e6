package safety

import (
	"path/filepath"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/pkg/filesystem"
	"github.com/doeshing/tai-go/internal/ports"
)

// Default pattern source file names under the patterns directory.
const (
	DangerousFileName = "dangerous_patterns.txt"
	SafeFileName      = "safe_patterns.txt"
)

// RuleClassifier implements the Classifier port on top of a PatternSet.
type RuleClassifier struct {
	set PatternSet
	dir string
}

// NewRuleClassifier loads pattern sources from dir (default ~/.tai/patterns)
// and builds a classifier. The pattern set is read once; call Reload to pick
// up edited files.
func NewRuleClassifier(dir string, log ports.Logger) *RuleClassifier {
	dangerous, safe := SourcePaths(dir)
	return &RuleClassifier{set: Load(dangerous, safe, log), dir: dir}
}

// NewClassifierFromSet wraps an already-loaded pattern set.
func NewClassifierFromSet(set PatternSet) *RuleClassifier {
	return &RuleClassifier{set: set}
}

// SourcePaths resolves the two pattern file paths for a patterns directory.
func SourcePaths(dir string) (dangerous, safe string) {
	dir = PatternsDir(dir)
	return filepath.Join(dir, DangerousFileName), filepath.Join(dir, SafeFileName)
}

// PatternsDir expands dir, defaulting to ~/.tai/patterns.
func PatternsDir(dir string) string {
	if dir == "" {
		return filepath.Join(filesystem.ConfigDir(), "patterns")
	}
	return filesystem.ExpandPath(dir)
}

// Classify tests the command against the dangerous list in file order, then
// the safe list. Dangerous patterns take precedence so a command matching
// both lists is conservatively flagged dangerous. A command matching neither
// list is unclassified, which the confirmation gate treats as
// dangerous-by-default.
func (c *RuleClassifier) Classify(command string) domain.Assessment {
	for _, p := range c.set.Dangerous {
		if p.Regex.MatchString(command) {
			return domain.Assessment{
				Verdict: domain.VerdictDangerous,
				Label:   p.Label,
				Pattern: p.Regex.String(),
			}
		}
	}
	for _, p := range c.set.Safe {
		if p.Regex.MatchString(command) {
			return domain.Assessment{
				Verdict: domain.VerdictSafe,
				Label:   p.Label,
				Pattern: p.Regex.String(),
			}
		}
	}
	return domain.Assessment{Verdict: domain.VerdictUnclassified}
}

// Reload replaces the pattern set from the given directory.
func (c *RuleClassifier) Reload(dir string, log ports.Logger) {
	dangerous, safe := SourcePaths(dir)
	c.set = Load(dangerous, safe, log)
	c.dir = dir
}

// SourceFiles returns the paths this classifier reads patterns from.
func (c *RuleClassifier) SourceFiles() (dangerous, safe string) {
	return SourcePaths(c.dir)
}

// Warnings reports non-fatal problems from the last load.
func (c *RuleClassifier) Warnings() []string {
	return c.set.Warnings
}

// Set exposes the loaded pattern set for inspection commands.
func (c *RuleClassifier) Set() PatternSet {
	return c.set
}

var _ ports.Classifier = (*RuleClassifier)(nil)
