package domain

// SafetyMode controls whether safe-verdict commands may auto-execute.
type SafetyMode int

const (
	// SafetyAlwaysAsk requires confirmation for every command.
	SafetyAlwaysAsk SafetyMode = 0
	// SafetyAutoRunSafe auto-executes commands that positively matched a
	// safe pattern; everything else still requires confirmation.
	SafetyAutoRunSafe SafetyMode = 1
)

// RequiresConfirmation decides whether a command with the given verdict may
// execute unattended. Absence of a safe match is never sufficient grounds for
// auto-execution: unclassified commands confirm under every mode.
func RequiresConfirmation(v Verdict, mode SafetyMode) bool {
	return !(mode == SafetyAutoRunSafe && v == VerdictSafe)
}
