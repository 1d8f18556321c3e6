// Package services contains the application use cases: turning a request
// into a classified plan, running it under the confirmation policy, and
// replaying ledger entries through the same safety path.
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/ports"
)

// QueryRequest describes one natural-language request.
type QueryRequest struct {
	Context       context.Context
	Prompt        string
	ModelOverride string
	// MultiStep asks for an ordered plan instead of a single command.
	MultiStep bool
	// Explain returns a description of what would run, without running it.
	Explain bool
	NoCache bool
	// AutoContext lets the model pick one extra context source for the prompt.
	AutoContext bool
	// ContextSource names a source to include unconditionally.
	ContextSource string
}

// QueryResponse reports what was generated and what actually happened.
type QueryResponse struct {
	Plan        domain.Plan
	Sequence    domain.SequenceResult
	Explanation string
	ModelUsed   string
	FromCache   bool
}

// QueryService orchestrates the request lifecycle end-to-end.
type QueryService struct {
	ConfigProvider   ports.ConfigProvider
	ContextCollector ports.ContextCollector
	ProviderFactory  ports.ProviderFactory
	Classifier       ports.Classifier
	Cache            ports.CacheRepository
	Prompter         ports.ConfirmationPrompter
	Sequence         *SequenceService
	Logger           ports.Logger
}

// Run processes a single request: generate, classify, preview, execute.
func (s *QueryService) Run(req QueryRequest) (QueryResponse, error) {
	if s.ConfigProvider == nil || s.ContextCollector == nil || s.ProviderFactory == nil ||
		s.Classifier == nil || s.Sequence == nil || s.Logger == nil {
		return QueryResponse{}, errors.New("services.QueryService dependencies not satisfied")
	}

	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return QueryResponse{}, fmt.Errorf("load config: %w", err)
	}

	snapshot, err := s.ContextCollector.Collect(ctx, cfg)
	if err != nil {
		return QueryResponse{}, fmt.Errorf("collect context: %w", err)
	}

	modelDef, err := pickModel(cfg, req.ModelOverride)
	if err != nil {
		return QueryResponse{}, err
	}

	provider, err := s.ProviderFactory.ForModel(modelDef)
	if err != nil {
		return QueryResponse{}, fmt.Errorf("provider init: %w", err)
	}

	snapshot.Extra = s.extraContext(ctx, provider, req, cfg)

	commands, fromCache, err := s.generateCommands(ctx, provider, req, cfg, snapshot, modelDef)
	if err != nil {
		return QueryResponse{}, err
	}
	if len(commands) == 0 {
		return QueryResponse{}, fmt.Errorf("model %s returned no command", modelDef.Name)
	}

	plan := s.buildPlan(req.Prompt, commands)
	resp := QueryResponse{Plan: plan, ModelUsed: modelDef.Name, FromCache: fromCache}

	if req.Explain {
		explanation, err := s.explain(ctx, provider, cfg, commands)
		if err != nil {
			return resp, err
		}
		resp.Explanation = explanation
		return resp, nil
	}

	seqResult, err := s.Sequence.Execute(ctx, plan, cfg, provider)
	resp.Sequence = seqResult
	if errors.Is(err, domain.ErrPlanDeclined) && len(plan.Steps) == 1 {
		return s.offerAlternatives(ctx, provider, req, cfg, snapshot, resp)
	}
	if err != nil {
		return resp, err
	}
	return resp, nil
}

// Replay re-runs a ledger entry by sequence number. The stored command is
// classified fresh against the current pattern set and passes through the
// same gate as a new command; history grants no trust.
func (s *QueryService) Replay(ctx context.Context, ledger ports.HistoryLedger, sequence int64) (QueryResponse, error) {
	if ledger == nil {
		return QueryResponse{}, errors.New("history ledger unavailable")
	}

	entry, err := ledger.Get(sequence)
	if err != nil {
		return QueryResponse{}, fmt.Errorf("history entry %d: %w", sequence, err)
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return QueryResponse{}, fmt.Errorf("load config: %w", err)
	}

	assessment := s.Classifier.Classify(entry.Command)
	plan := domain.Plan{
		Prompt: entry.Prompt,
		Steps: []domain.CommandStep{{
			Text:    entry.Command,
			Origin:  domain.OriginHistoryReplay,
			Verdict: assessment.Verdict,
			Reason:  assessment.Label,
		}},
	}

	resp := QueryResponse{Plan: plan}
	seqResult, err := s.Sequence.Execute(ctx, plan, cfg, nil)
	resp.Sequence = seqResult
	return resp, err
}

// explain asks the model to describe the generated command(s) instead of
// running them.
func (s *QueryService) explain(ctx context.Context, provider ports.Provider, cfg domain.Config, commands []string) (string, error) {
	reqCtx, cancel := providerContext(ctx, cfg)
	defer cancel()
	aiResp, err := provider.Generate(reqCtx, ports.ProviderRequest{
		Task:   ports.TaskExplain,
		Prompt: strings.Join(commands, "\n"),
	})
	if err != nil {
		return "", fmt.Errorf("explain: %w", err)
	}
	return aiResp.Text, nil
}

// generateCommands consults the cache before asking the model. Cache trouble
// is logged and treated as a miss.
func (s *QueryService) generateCommands(
	ctx context.Context,
	provider ports.Provider,
	req QueryRequest,
	cfg domain.Config,
	snapshot domain.ContextSnapshot,
	modelDef domain.ModelDefinition,
) ([]string, bool, error) {
	task := ports.TaskGenerate
	if req.MultiStep && cfg.Execution.MultiStepEnabled {
		task = ports.TaskPlan
	}

	key := domain.CacheKey(string(task)+"\x00"+req.Prompt, modelDef.Name)
	if s.cacheEnabled(req) {
		if entry, ok, err := s.Cache.Get(key); err != nil {
			s.Logger.Warn("cache read failed", map[string]interface{}{"error": err.Error()})
		} else if ok {
			s.Logger.Debug("cache hit", map[string]interface{}{"key": key})
			return entry.Commands, true, nil
		}
	}

	reqCtx, cancel := providerContext(ctx, cfg)
	defer cancel()
	aiResp, err := provider.Generate(reqCtx, ports.ProviderRequest{
		Task:    task,
		Prompt:  req.Prompt,
		Context: snapshot,
	})
	if err != nil {
		return nil, false, fmt.Errorf("provider generate: %w", err)
	}

	if s.cacheEnabled(req) && len(aiResp.Commands) > 0 {
		err := s.Cache.Set(domain.CacheEntry{
			Key:       key,
			Prompt:    req.Prompt,
			Commands:  aiResp.Commands,
			Model:     modelDef.Name,
			CreatedAt: time.Now(),
		})
		if err != nil {
			s.Logger.Warn("cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return aiResp.Commands, false, nil
}

// extraContext resolves the optional extra context source: a name forced on
// the request wins, otherwise the model may pick one from the available
// sources. Failures degrade to no extra context.
func (s *QueryService) extraContext(ctx context.Context, provider ports.Provider, req QueryRequest, cfg domain.Config) string {
	var name string
	switch {
	case req.ContextSource != "":
		name = req.ContextSource
	case req.AutoContext:
		name = s.chooseSource(ctx, provider, req.Prompt, cfg)
	default:
		return ""
	}
	if name == "" {
		return ""
	}

	report, err := s.ContextCollector.Gather(ctx, name)
	if err != nil {
		s.Logger.Warn("context source unavailable", map[string]interface{}{
			"source": name,
			"error":  err.Error(),
		})
		return ""
	}
	return report
}

// chooseSource asks the model which source would help with the prompt. The
// model answers with a list index; -1 or anything unparsable means none.
func (s *QueryService) chooseSource(ctx context.Context, provider ports.Provider, prompt string, cfg domain.Config) string {
	sources := s.ContextCollector.Sources()
	if len(sources) == 0 {
		return ""
	}

	reqCtx, cancel := providerContext(ctx, cfg)
	defer cancel()
	aiResp, err := provider.Generate(reqCtx, ports.ProviderRequest{
		Task:    ports.TaskChooseContext,
		Prompt:  prompt,
		Choices: sources,
	})
	if err != nil {
		s.Logger.Warn("context choice failed", map[string]interface{}{"error": err.Error()})
		return ""
	}

	index, err := strconv.Atoi(strings.TrimSpace(aiResp.Text))
	if err != nil || index < 0 || index >= len(sources) {
		return ""
	}
	s.Logger.Debug("model picked context source", map[string]interface{}{"source": sources[index].Name})
	return sources[index].Name
}

// providerContext bounds a model request by the configured timeout. Only
// provider calls carry this deadline; the execution path never does.
func providerContext(ctx context.Context, cfg domain.Config) (context.Context, context.CancelFunc) {
	if cfg.Preferences.TimeoutSeconds <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Duration(cfg.Preferences.TimeoutSeconds)*time.Second)
}

func (s *QueryService) cacheEnabled(req QueryRequest) bool {
	return s.Cache != nil && !req.NoCache && os.Getenv("TAI_NOCACHE") == ""
}

func (s *QueryService) buildPlan(prompt string, commands []string) domain.Plan {
	plan := domain.Plan{Prompt: prompt}
	for _, command := range commands {
		assessment := s.Classifier.Classify(command)
		plan.Steps = append(plan.Steps, domain.CommandStep{
			Text:    command,
			Origin:  domain.OriginGenerated,
			Verdict: assessment.Verdict,
			Reason:  assessment.Label,
		})
	}
	return plan
}

// offerAlternatives runs after the user declines a single-command plan:
// fetch replacement candidates, let the user pick one, and route the pick
// through the normal plan path.
func (s *QueryService) offerAlternatives(
	ctx context.Context,
	provider ports.Provider,
	req QueryRequest,
	cfg domain.Config,
	snapshot domain.ContextSnapshot,
	declined QueryResponse,
) (QueryResponse, error) {
	if s.Prompter == nil || !s.Prompter.Enabled() || cfg.Preferences.Alternatives <= 0 {
		return declined, domain.ErrPlanDeclined
	}

	reqCtx, cancel := providerContext(ctx, cfg)
	defer cancel()
	aiResp, err := provider.Generate(reqCtx, ports.ProviderRequest{
		Task:         ports.TaskGenerate,
		Prompt:       req.Prompt,
		Context:      snapshot,
		Alternatives: cfg.Preferences.Alternatives,
	})
	if err != nil {
		s.Logger.Warn("alternatives unavailable", map[string]interface{}{"error": err.Error()})
		return declined, domain.ErrPlanDeclined
	}

	candidates := s.buildPlan(req.Prompt, aiResp.Commands).Steps
	if len(candidates) == 0 {
		return declined, domain.ErrPlanDeclined
	}

	choice, err := s.Prompter.ChooseAlternative(candidates)
	if err != nil {
		return declined, fmt.Errorf("choose alternative: %w", err)
	}
	if choice < 0 || choice >= len(candidates) {
		return declined, domain.ErrPlanDeclined
	}

	plan := domain.Plan{Prompt: req.Prompt, Steps: []domain.CommandStep{candidates[choice]}}
	resp := QueryResponse{Plan: plan, ModelUsed: declined.ModelUsed}
	seqResult, err := s.Sequence.Execute(ctx, plan, cfg, provider)
	resp.Sequence = seqResult
	return resp, err
}

func pickModel(cfg domain.Config, override string) (domain.ModelDefinition, error) {
	name := override
	if name == "" {
		name = cfg.Preferences.DefaultModel
	}
	if name == "" && len(cfg.Models) > 0 {
		return cfg.Models[0], nil
	}
	for _, model := range cfg.Models {
		if model.Name == name {
			return model, nil
		}
	}
	return domain.ModelDefinition{}, fmt.Errorf("model %s not configured", name)
}
