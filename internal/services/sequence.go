package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/ports"
)

// SequenceService drives an approved plan through gating, execution and the
// bounded auto-correct loop. It is the only service that calls the executor.
type SequenceService struct {
	Classifier ports.Classifier
	Executor   ports.CommandExecutor
	Prompter   ports.ConfirmationPrompter
	Ledger     ports.HistoryLedger
	Logger     ports.Logger
}

// Execute runs a plan to completion or abort. The whole plan is previewed for
// approval before any step runs; a single decline abandons everything with
// zero side effects. Within an approved sequence each step is still gated
// individually, and the first unrecovered failure aborts the remainder.
// provider supplies correction candidates and may be nil when auto-correct is
// disabled.
func (s *SequenceService) Execute(ctx context.Context, plan domain.Plan, cfg domain.Config, provider ports.Provider) (domain.SequenceResult, error) {
	if s.Classifier == nil || s.Executor == nil || s.Logger == nil {
		return domain.SequenceResult{}, errors.New("services.SequenceService dependencies not satisfied")
	}

	result := domain.SequenceResult{State: domain.SequencePendingApproval}

	if len(plan.Steps) == 0 {
		result.State = domain.SequenceCompleted
		return result, nil
	}

	if s.Prompter != nil && s.Prompter.Enabled() {
		approved, err := s.Prompter.ApprovePlan(plan)
		if err != nil {
			return result, fmt.Errorf("approve plan: %w", err)
		}
		if !approved {
			result.State = domain.SequenceAborted
			result.Aborted = true
			result.AbortReason = "plan declined"
			return result, domain.ErrPlanDeclined
		}
	}

	planApproved := s.Prompter != nil && s.Prompter.Enabled()

	result.State = domain.SequenceRunning
	modelName := ""
	if provider != nil {
		modelName = provider.Model().Name
	}

	for _, step := range plan.Steps {
		outcome, err := s.runStep(ctx, step, plan.Prompt, cfg, provider, modelName, planApproved)
		if err != nil {
			result.State = domain.SequenceAborted
			result.Aborted = true
			result.AbortReason = err.Error()
			return result, err
		}
		result.Completed = append(result.Completed, outcome)
	}

	result.State = domain.SequenceCompleted
	return result, nil
}

// runStep gates and executes one planned step, retrying with corrected
// replacements while the attempt budget lasts. Every replacement is a fresh
// step routed through the same classify, gate and execute path as the
// original.
func (s *SequenceService) runStep(
	ctx context.Context,
	step domain.CommandStep,
	prompt string,
	cfg domain.Config,
	provider ports.Provider,
	modelName string,
	planApproved bool,
) (domain.StepOutcome, error) {
	current := step
	for {
		if err := s.gate(current, cfg, planApproved); err != nil {
			return domain.StepOutcome{}, err
		}

		execResult, err := s.Executor.Execute(ctx, current.Text)
		if err != nil {
			return domain.StepOutcome{}, fmt.Errorf("execute %q: %w", current.Text, err)
		}

		if execResult.Succeeded {
			s.record(prompt, current, execResult, modelName)
			return domain.StepOutcome{Step: current, Result: execResult}, nil
		}

		s.Logger.Warn("command failed", map[string]interface{}{
			"command":   current.Text,
			"exit_code": execResult.ExitCode,
		})

		if !cfg.Safety.AutocorrectEnabled || provider == nil {
			return domain.StepOutcome{}, fmt.Errorf("command %q exited with code %d", current.Text, execResult.ExitCode)
		}
		if current.Attempt >= cfg.Safety.MaxCorrectAttempts {
			return domain.StepOutcome{}, &domain.CorrectionExhaustedError{
				Command:  current.Text,
				Attempts: current.Attempt,
				Stderr:   execResult.Stderr,
			}
		}

		corrected, err := s.correct(ctx, provider, prompt, cfg, current, execResult)
		if err != nil {
			return domain.StepOutcome{}, err
		}
		current = corrected
	}
}

// gate enforces the confirmation policy for a single step. Approving the
// plan preview already confirms its safe steps, so those are not asked
// about a second time; a corrected step was never previewed and always
// goes through the prompt. Steps that need confirmation in a
// non-interactive session are declined, never silently run.
func (s *SequenceService) gate(step domain.CommandStep, cfg domain.Config, planApproved bool) error {
	if !domain.RequiresConfirmation(step.Verdict, cfg.Safety.Mode) {
		return nil
	}
	if planApproved && step.Verdict == domain.VerdictSafe && step.Origin != domain.OriginCorrected {
		return nil
	}
	if s.Prompter == nil || !s.Prompter.Enabled() {
		return fmt.Errorf("command %q requires confirmation: %w", step.Text, domain.ErrStepDeclined)
	}
	approved, err := s.Prompter.ConfirmStep(step)
	if err != nil {
		return fmt.Errorf("confirm step: %w", err)
	}
	if !approved {
		return fmt.Errorf("command %q: %w", step.Text, domain.ErrStepDeclined)
	}
	return nil
}

// correct asks the provider for a replacement and classifies it as a new
// step with the attempt counter advanced.
func (s *SequenceService) correct(
	ctx context.Context,
	provider ports.Provider,
	prompt string,
	cfg domain.Config,
	failed domain.CommandStep,
	execResult domain.ExecutionResult,
) (domain.CommandStep, error) {
	failure := execResult.Stderr
	if failure == "" {
		failure = execResult.Stdout
	}

	reqCtx, cancel := providerContext(ctx, cfg)
	defer cancel()
	resp, err := provider.Generate(reqCtx, ports.ProviderRequest{
		Task:          ports.TaskCorrect,
		Prompt:        prompt,
		FailedCommand: failed.Text,
		FailureOutput: failure,
	})
	if err != nil {
		return domain.CommandStep{}, fmt.Errorf("correction request: %w", err)
	}
	if len(resp.Commands) == 0 || resp.Commands[0] == "" {
		return domain.CommandStep{}, &domain.CorrectionExhaustedError{
			Command:  failed.Text,
			Attempts: failed.Attempt + 1,
			Stderr:   failure,
		}
	}

	assessment := s.Classifier.Classify(resp.Commands[0])
	step := domain.CommandStep{
		Text:    resp.Commands[0],
		Origin:  domain.OriginCorrected,
		Verdict: assessment.Verdict,
		Reason:  assessment.Label,
		Attempt: failed.Attempt + 1,
	}

	s.Logger.Info("correction proposed", map[string]interface{}{
		"failed":    failed.Text,
		"corrected": step.Text,
		"attempt":   step.Attempt,
	})
	return step, nil
}

// record appends a succeeded step to the ledger. Ledger trouble is reported
// and then ignored; history never blocks execution.
func (s *SequenceService) record(prompt string, step domain.CommandStep, execResult domain.ExecutionResult, modelName string) {
	if s.Ledger == nil {
		return
	}
	entry := domain.HistoryEntry{
		Timestamp: time.Now(),
		Prompt:    prompt,
		Command:   step.Text,
		Origin:    step.Origin,
		Verdict:   step.Verdict,
		ExitCode:  execResult.ExitCode,
		Model:     modelName,
	}
	if err := s.Ledger.Append(entry); err != nil {
		s.Logger.Warn("history append failed", map[string]interface{}{"error": err.Error()})
	}
}
