package services

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/pkg/logger"
	"github.com/doeshing/tai-go/internal/ports"
)

func testConfig() domain.Config {
	cfg := domain.Config{}
	cfg.Safety.Mode = domain.SafetyAlwaysAsk
	cfg.Safety.AutocorrectEnabled = true
	cfg.Safety.MaxCorrectAttempts = 2
	return cfg
}

func newSequenceService(exec *stubExecutor, prompter ports.ConfirmationPrompter, ledger *stubLedger) *SequenceService {
	return &SequenceService{
		Classifier: stubClassifier{},
		Executor:   exec,
		Prompter:   prompter,
		Ledger:     ledger,
		Logger:     logger.NewStd(false),
	}
}

func TestDeclinedPlanHasZeroSideEffects(t *testing.T) {
	exec := &stubExecutor{}
	ledger := &stubLedger{}
	svc := newSequenceService(exec, &stubPrompter{approvePlan: false}, ledger)

	plan := domain.Plan{
		Prompt: "clean up",
		Steps: []domain.CommandStep{
			{Text: "ls", Verdict: domain.VerdictSafe},
			{Text: "rm -rf /tmp/x", Verdict: domain.VerdictDangerous},
		},
	}

	result, err := svc.Execute(context.Background(), plan, testConfig(), nil)
	if !errors.Is(err, domain.ErrPlanDeclined) {
		t.Fatalf("Execute() error = %v, want ErrPlanDeclined", err)
	}
	if result.State != domain.SequenceAborted {
		t.Errorf("state = %q, want aborted", result.State)
	}
	if len(exec.calls) != 0 {
		t.Errorf("executor ran %v, want nothing", exec.calls)
	}
	if len(ledger.entries) != 0 {
		t.Errorf("ledger has %d entries, want 0", len(ledger.entries))
	}
}

func TestFailureAbortsRemainingStepsWithoutAutocorrect(t *testing.T) {
	exec := &stubExecutor{failOn: map[string]int{"step2": 1}}
	ledger := &stubLedger{}
	svc := newSequenceService(exec, &stubPrompter{approvePlan: true, confirmStep: true}, ledger)

	cfg := testConfig()
	cfg.Safety.AutocorrectEnabled = false

	plan := domain.Plan{
		Steps: []domain.CommandStep{
			{Text: "step1", Verdict: domain.VerdictSafe},
			{Text: "step2", Verdict: domain.VerdictSafe},
			{Text: "step3", Verdict: domain.VerdictSafe},
		},
	}

	result, err := svc.Execute(context.Background(), plan, cfg, nil)
	if err == nil {
		t.Fatal("Execute() error = nil, want failure abort")
	}
	if result.State != domain.SequenceAborted {
		t.Errorf("state = %q, want aborted", result.State)
	}
	for _, call := range exec.calls {
		if call == "step3" {
			t.Error("step3 ran after step2 failed")
		}
	}
	if len(ledger.entries) != 1 || ledger.entries[0].Command != "step1" {
		t.Errorf("ledger = %+v, want exactly step1", ledger.entries)
	}
}

func TestAutocorrectBoundedByAttemptBudget(t *testing.T) {
	exec := &stubExecutor{failAll: true}
	provider := &stubProvider{commands: []string{"fixed"}}
	svc := newSequenceService(exec, &stubPrompter{approvePlan: true, confirmStep: true}, &stubLedger{})

	plan := domain.Plan{Steps: []domain.CommandStep{{Text: "broken", Verdict: domain.VerdictSafe}}}

	_, err := svc.Execute(context.Background(), plan, testConfig(), provider)

	var exhausted *domain.CorrectionExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Execute() error = %v, want CorrectionExhaustedError", err)
	}
	corrections := 0
	for _, req := range provider.requests {
		if req.Task == ports.TaskCorrect {
			corrections++
		}
	}
	if corrections != 2 {
		t.Errorf("correction requests = %d, want exactly 2", corrections)
	}
	if exhausted.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", exhausted.Attempts)
	}
}

func TestCorrectedStepIsReclassifiedAndRegated(t *testing.T) {
	exec := &stubExecutor{failOn: map[string]int{"lls /tmp": 1}}
	provider := &stubProvider{commands: []string{"rm -rf /tmp/x"}}
	prompter := &stubPrompter{approvePlan: true, confirmStep: true}
	svc := newSequenceService(exec, prompter, &stubLedger{})
	svc.Classifier = stubClassifier{dangerous: map[string]bool{"rm -rf /tmp/x": true}}

	cfg := testConfig()
	cfg.Safety.Mode = domain.SafetyAutoRunSafe

	plan := domain.Plan{Steps: []domain.CommandStep{{Text: "lls /tmp", Verdict: domain.VerdictSafe}}}

	result, err := svc.Execute(context.Background(), plan, cfg, provider)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(prompter.confirmed) != 1 || prompter.confirmed[0].Text != "rm -rf /tmp/x" {
		t.Fatalf("confirmed steps = %+v, want the corrected command gated", prompter.confirmed)
	}
	if prompter.confirmed[0].Verdict != domain.VerdictDangerous {
		t.Errorf("corrected verdict = %q, want dangerous", prompter.confirmed[0].Verdict)
	}
	if prompter.confirmed[0].Origin != domain.OriginCorrected {
		t.Errorf("corrected origin = %q, want corrected", prompter.confirmed[0].Origin)
	}
	if prompter.confirmed[0].Attempt != 1 {
		t.Errorf("corrected attempt = %d, want 1", prompter.confirmed[0].Attempt)
	}
	if result.State != domain.SequenceCompleted {
		t.Errorf("state = %q, want completed", result.State)
	}
}

func TestCorrectionResumesNextPlannedStep(t *testing.T) {
	exec := &stubExecutor{failOn: map[string]int{"step2": 1}}
	provider := &stubProvider{commands: []string{"step2-fixed"}}
	ledger := &stubLedger{}
	svc := newSequenceService(exec, &stubPrompter{approvePlan: true, confirmStep: true}, ledger)

	plan := domain.Plan{
		Steps: []domain.CommandStep{
			{Text: "step1", Verdict: domain.VerdictSafe},
			{Text: "step2", Verdict: domain.VerdictSafe},
			{Text: "step3", Verdict: domain.VerdictSafe},
		},
	}

	result, err := svc.Execute(context.Background(), plan, testConfig(), provider)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.State != domain.SequenceCompleted {
		t.Fatalf("state = %q, want completed", result.State)
	}
	want := []string{"step1", "step2", "step2-fixed", "step3"}
	if len(exec.calls) != len(want) {
		t.Fatalf("executor calls = %v, want %v", exec.calls, want)
	}
	for i, call := range want {
		if exec.calls[i] != call {
			t.Errorf("call[%d] = %q, want %q", i, exec.calls[i], call)
		}
	}
	if len(ledger.entries) != 3 {
		t.Errorf("ledger entries = %d, want 3 succeeded steps", len(ledger.entries))
	}
}

func TestLedgerFailureNeverBlocksExecution(t *testing.T) {
	exec := &stubExecutor{}
	ledger := &stubLedger{appendErr: errors.New("disk full")}
	svc := newSequenceService(exec, &stubPrompter{approvePlan: true, confirmStep: true}, ledger)

	plan := domain.Plan{
		Steps: []domain.CommandStep{
			{Text: "step1", Verdict: domain.VerdictSafe},
			{Text: "step2", Verdict: domain.VerdictSafe},
		},
	}

	result, err := svc.Execute(context.Background(), plan, testConfig(), nil)
	if err != nil {
		t.Fatalf("Execute() error = %v, ledger trouble must not block", err)
	}
	if result.State != domain.SequenceCompleted {
		t.Errorf("state = %q, want completed", result.State)
	}
	if len(exec.calls) != 2 {
		t.Errorf("executor calls = %v, want both steps", exec.calls)
	}
}

func TestNonInteractiveSessionNeverRunsGatedCommand(t *testing.T) {
	exec := &stubExecutor{}
	svc := newSequenceService(exec, &stubPrompter{enabledOff: true}, &stubLedger{})

	plan := domain.Plan{Steps: []domain.CommandStep{{Text: "anything", Verdict: domain.VerdictUnclassified}}}

	_, err := svc.Execute(context.Background(), plan, testConfig(), nil)
	if !errors.Is(err, domain.ErrStepDeclined) {
		t.Fatalf("Execute() error = %v, want ErrStepDeclined", err)
	}
	if len(exec.calls) != 0 {
		t.Errorf("executor ran %v, want nothing", exec.calls)
	}
}

func TestSafeStepsAutoRunUnderAutoRunSafeMode(t *testing.T) {
	exec := &stubExecutor{}
	prompter := &stubPrompter{approvePlan: true, confirmStep: false}
	svc := newSequenceService(exec, prompter, &stubLedger{})

	cfg := testConfig()
	cfg.Safety.Mode = domain.SafetyAutoRunSafe

	plan := domain.Plan{Steps: []domain.CommandStep{{Text: "ls", Verdict: domain.VerdictSafe}}}

	result, err := svc.Execute(context.Background(), plan, cfg, nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.State != domain.SequenceCompleted {
		t.Errorf("state = %q, want completed", result.State)
	}
	if len(prompter.confirmed) != 0 {
		t.Errorf("ConfirmStep called for safe step under auto-run mode: %+v", prompter.confirmed)
	}
}

func TestPlanApprovalCoversSafeSteps(t *testing.T) {
	exec := &stubExecutor{}
	prompter := &stubPrompter{approvePlan: true, confirmStep: true}
	svc := newSequenceService(exec, prompter, &stubLedger{})

	plan := domain.Plan{
		Steps: []domain.CommandStep{
			{Text: "ls", Verdict: domain.VerdictSafe},
			{Text: "rm -rf /tmp/x", Verdict: domain.VerdictDangerous},
		},
	}

	result, err := svc.Execute(context.Background(), plan, testConfig(), nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.State != domain.SequenceCompleted {
		t.Errorf("state = %q, want completed", result.State)
	}
	if len(prompter.confirmed) != 1 || prompter.confirmed[0].Text != "rm -rf /tmp/x" {
		t.Errorf("confirmed steps = %+v, want only the dangerous one", prompter.confirmed)
	}
}

func TestCorrectedSafeStepIsStillConfirmed(t *testing.T) {
	exec := &stubExecutor{failOn: map[string]int{"lls": 1}}
	provider := &stubProvider{commands: []string{"ls"}}
	prompter := &stubPrompter{approvePlan: true, confirmStep: true}
	svc := newSequenceService(exec, prompter, &stubLedger{})
	svc.Classifier = stubClassifier{safe: map[string]bool{"ls": true}}

	plan := domain.Plan{Steps: []domain.CommandStep{{Text: "lls", Verdict: domain.VerdictSafe}}}

	result, err := svc.Execute(context.Background(), plan, testConfig(), provider)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.State != domain.SequenceCompleted {
		t.Errorf("state = %q, want completed", result.State)
	}
	// The replacement was never part of the approved preview.
	if len(prompter.confirmed) != 1 || prompter.confirmed[0].Text != "ls" {
		t.Errorf("confirmed steps = %+v, want only the replacement", prompter.confirmed)
	}
}

type stubExecutor struct {
	calls   []string
	failAll bool
	// failOn maps a command to how many times it should fail before
	// succeeding.
	failOn map[string]int
}

func (s *stubExecutor) Execute(_ context.Context, command string) (domain.ExecutionResult, error) {
	s.calls = append(s.calls, command)
	if s.failAll {
		return domain.ExecutionResult{ExitCode: 127, Stderr: "command not found", Succeeded: false}, nil
	}
	if remaining, ok := s.failOn[command]; ok && remaining > 0 {
		s.failOn[command] = remaining - 1
		return domain.ExecutionResult{ExitCode: 1, Stderr: "boom", Succeeded: false}, nil
	}
	return domain.ExecutionResult{ExitCode: 0, Succeeded: true}, nil
}

type stubPrompter struct {
	approvePlan bool
	confirmStep bool
	enabledOff  bool
	choice      int
	confirmed   []domain.CommandStep
	plans       []domain.Plan
}

func (s *stubPrompter) ApprovePlan(plan domain.Plan) (bool, error) {
	s.plans = append(s.plans, plan)
	return s.approvePlan, nil
}

func (s *stubPrompter) ConfirmStep(step domain.CommandStep) (bool, error) {
	s.confirmed = append(s.confirmed, step)
	return s.confirmStep, nil
}

func (s *stubPrompter) ChooseAlternative([]domain.CommandStep) (int, error) {
	return s.choice, nil
}

func (s *stubPrompter) Enabled() bool { return !s.enabledOff }

type stubLedger struct {
	entries   []domain.HistoryEntry
	appendErr error
	getEntry  domain.HistoryEntry
	getErr    error
}

func (s *stubLedger) Append(entry domain.HistoryEntry) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	entry.Sequence = int64(len(s.entries) + 1)
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubLedger) List(int) ([]domain.HistoryEntry, error) { return s.entries, nil }

func (s *stubLedger) Get(int64) (domain.HistoryEntry, error) { return s.getEntry, s.getErr }

func (s *stubLedger) Clear() error { return nil }

func (s *stubLedger) ExportJSON(string) error { return nil }

func (s *stubLedger) Path() string { return "" }

type stubClassifier struct {
	dangerous map[string]bool
	safe      map[string]bool
}

func (s stubClassifier) Classify(command string) domain.Assessment {
	if s.dangerous[command] {
		return domain.Assessment{Verdict: domain.VerdictDangerous, Label: "stub rule"}
	}
	if s.safe[command] {
		return domain.Assessment{Verdict: domain.VerdictSafe, Label: "stub rule"}
	}
	return domain.Assessment{Verdict: domain.VerdictUnclassified}
}

type stubProvider struct {
	commands []string
	text     string
	err      error
	requests []ports.ProviderRequest
	model    domain.ModelDefinition
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Model() domain.ModelDefinition { return s.model }

func (s *stubProvider) Generate(_ context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return ports.ProviderResponse{}, s.err
	}
	return ports.ProviderResponse{Commands: s.commands, Text: s.text}, nil
}
