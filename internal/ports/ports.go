// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and
// external adapters (infrastructure). Following the Ports and Adapters
// pattern, these interfaces allow the application to remain independent of
// specific implementations like databases, HTTP clients, or CLI frameworks.
package ports

import (
	"context"

	"github.com/doeshing/tai-go/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.tai/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Classifier produces a risk verdict for a single command string.
// Verdicts are computed fresh per call; the backing pattern set is loaded
// once and only changes through an explicit reload.
type Classifier interface {
	Classify(command string) domain.Assessment
}

// CommandExecutor runs one shell command and reports its outcome. A non-zero
// exit status is a normal ExecutionResult, not an error; errors are reserved
// for failures to invoke the shell at all. This is the single boundary where
// the system touches the outside world.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (domain.ExecutionResult, error)
}

// ConfirmationPrompter handles interactive approvals. ApprovePlan presents
// the full plan with verdicts before anything runs; ConfirmStep gates an
// individual step; ChooseAlternative offers replacement commands after a
// decline and returns the selected index or -1.
type ConfirmationPrompter interface {
	ApprovePlan(plan domain.Plan) (bool, error)
	ConfirmStep(step domain.CommandStep) (bool, error)
	ChooseAlternative(steps []domain.CommandStep) (int, error)
	Enabled() bool
}

// HistoryLedger is the append-only record of executed commands.
// Append is best-effort: callers log failures and continue.
type HistoryLedger interface {
	Append(entry domain.HistoryEntry) error
	// List returns up to limit entries, most recent first.
	List(limit int) ([]domain.HistoryEntry, error)
	// Get fetches one entry by sequence number for replay.
	Get(sequence int64) (domain.HistoryEntry, error)
	Clear() error
	ExportJSON(dest string) error
	Path() string
}

// TaskKind selects the shape of a provider request.
type TaskKind string

const (
	TaskGenerate TaskKind = "generate"
	TaskPlan     TaskKind = "plan"
	TaskCorrect  TaskKind = "correct"
	TaskExplain  TaskKind = "explain"
	// TaskChat carries a full conversation transcript in Messages.
	TaskChat TaskKind = "chat"
	// TaskChooseContext asks the model to pick a context source by number.
	TaskChooseContext TaskKind = "choose-context"
)

// ProviderRequest contains all data needed to generate an AI response.
type ProviderRequest struct {
	Task    TaskKind
	Prompt  string
	Context domain.ContextSnapshot
	// FailedCommand and FailureOutput are set for TaskCorrect.
	FailedCommand string
	FailureOutput string
	// Alternatives is how many candidates TaskPlan or TaskGenerate may return.
	Alternatives int
	// Messages is the transcript for TaskChat; it is sent verbatim.
	Messages []domain.PromptMessage
	// Choices lists the numbered options for TaskChooseContext.
	Choices []domain.ContextSource
}

// ProviderResponse contains the generated command(s) and raw reply text.
type ProviderResponse struct {
	Commands []string
	Text     string
}

// Provider defines the core AI generation capability. The core treats it as
// an opaque function; it does not interpret model reasoning.
type Provider interface {
	Name() string
	Model() domain.ModelDefinition
	Generate(context.Context, ProviderRequest) (ProviderResponse, error)
}

// ProviderFactory builds AI provider instances based on model definitions.
type ProviderFactory interface {
	ForModel(domain.ModelDefinition) (Provider, error)
}

// ContextCollector gathers environmental context to enrich AI prompts.
// Beyond the base snapshot it exposes named sources (process list, users,
// network state) that can be gathered on request.
type ContextCollector interface {
	Collect(context.Context, domain.Config) (domain.ContextSnapshot, error)
	// Sources lists the gatherable extra sources in stable order.
	Sources() []domain.ContextSource
	// Gather runs one named source and returns its report.
	Gather(ctx context.Context, name string) (string, error)
}

// ChatStore persists the conversation transcript between chat sessions.
type ChatStore interface {
	Load() ([]domain.PromptMessage, error)
	Save([]domain.PromptMessage) error
	Clear() error
}

// CacheRepository stores provider responses keyed by prompt hash.
type CacheRepository interface {
	Get(key string) (domain.CacheEntry, bool, error)
	Set(entry domain.CacheEntry) error
	Clear() error
	Entries() ([]domain.CacheEntry, error)
	Dir() string
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
