// Package domain defines core business entities and value objects for TAI.
//
// The domain layer is independent of infrastructure concerns and represents
// pure business logic and data structures: command steps, plans, verdicts,
// execution results, and the confirmation policy.
package domain

// Verdict is the risk classification of a single command.
type Verdict string

const (
	VerdictSafe         Verdict = "safe"
	VerdictDangerous    Verdict = "dangerous"
	VerdictUnclassified Verdict = "unclassified"
)

// StepOrigin records how a command step entered the pipeline.
type StepOrigin string

const (
	OriginGenerated     StepOrigin = "generated"
	OriginCorrected     StepOrigin = "corrected"
	OriginHistoryReplay StepOrigin = "history-replay"
)

// Assessment is the classifier's output for one command string.
type Assessment struct {
	Verdict Verdict
	// Label is the human-readable name of the matched rule, empty for
	// unclassified commands.
	Label string
	// Pattern is the source regex that matched, for diagnostics.
	Pattern string
}

// CommandStep is one shell command inside a plan. Steps are immutable once
// classified; a corrected replacement is a new step with Attempt incremented,
// never a mutation of the failed one.
type CommandStep struct {
	Text    string
	Origin  StepOrigin
	Verdict Verdict
	// Reason carries the matched rule label for user-facing explanation.
	Reason  string
	Attempt int
}

// Plan is an ordered command sequence produced for one user request.
// Steps execute strictly in order or the plan is abandoned entirely.
type Plan struct {
	Prompt string
	Steps  []CommandStep
}

// ExecutionResult captures the outcome of running one step.
type ExecutionResult struct {
	ExitCode   int
	Stdout     string
	Stderr     string
	Succeeded  bool
	DurationMS int64
}

// SequenceState tracks a plan through its lifecycle.
type SequenceState string

const (
	SequencePendingApproval SequenceState = "pending_approval"
	SequenceRunning         SequenceState = "running"
	SequenceCompleted       SequenceState = "completed"
	SequenceAborted         SequenceState = "aborted"
)

// StepOutcome pairs an executed step with its result.
type StepOutcome struct {
	Step   CommandStep
	Result ExecutionResult
}

// SequenceResult summarizes a plan execution.
type SequenceResult struct {
	State       SequenceState
	Completed   []StepOutcome
	Aborted     bool
	AbortReason string
}
