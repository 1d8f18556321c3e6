// Package app wires application services to their infrastructure adapters.
package app

import (
	"context"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/infrastructure/ai"
	"github.com/doeshing/tai-go/internal/infrastructure/cache"
	"github.com/doeshing/tai-go/internal/infrastructure/config"
	"github.com/doeshing/tai-go/internal/infrastructure/contextinfo"
	"github.com/doeshing/tai-go/internal/infrastructure/executor"
	"github.com/doeshing/tai-go/internal/infrastructure/history"
	"github.com/doeshing/tai-go/internal/infrastructure/safety"
	"github.com/doeshing/tai-go/internal/pkg/logger"
	"github.com/doeshing/tai-go/internal/ports"
	"github.com/doeshing/tai-go/internal/services"
)

// Container holds the wired dependency graph.
type Container struct {
	QueryService    *services.QueryService
	SequenceService *services.SequenceService
	ChatService     *services.ChatService
	ConfigLoader    *config.FileLoader
	Classifier      *safety.RuleClassifier
	Collector       ports.ContextCollector
	HistoryLedger   ports.HistoryLedger
	CacheStore      ports.CacheRepository
	Logger          ports.Logger
}

// BuildContainer constructs the dependency graph. The prompter stays unset;
// the CLI layer attaches its own before running anything interactive.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)
	classifier := safety.NewRuleClassifier(cfg.Safety.PatternsDir, log)
	ledger := buildLedger(cfg)
	cacheStore := cache.NewFileCache()
	collector := contextinfo.NewBasicCollector()
	factory := ai.NewFactory()

	sequenceService := &services.SequenceService{
		Classifier: classifier,
		Executor:   executor.NewLocalExecutor(cfg.Execution.Shell),
		Ledger:     ledger,
		Logger:     log,
	}

	queryService := &services.QueryService{
		ConfigProvider:   cfgLoader,
		ContextCollector: collector,
		ProviderFactory:  factory,
		Classifier:       classifier,
		Cache:            cacheStore,
		Sequence:         sequenceService,
		Logger:           log,
	}

	chatService := &services.ChatService{
		ConfigProvider:   cfgLoader,
		ContextCollector: collector,
		ProviderFactory:  factory,
		Store:            history.NewFileChatStore(),
		Logger:           log,
	}

	return &Container{
		QueryService:    queryService,
		SequenceService: sequenceService,
		ChatService:     chatService,
		ConfigLoader:    cfgLoader,
		Classifier:      classifier,
		Collector:       collector,
		HistoryLedger:   ledger,
		CacheStore:      cacheStore,
		Logger:          log,
	}, nil
}

// AttachPrompter installs the interactive confirmation surface on both
// services.
func (c *Container) AttachPrompter(prompter ports.ConfirmationPrompter) {
	c.SequenceService.Prompter = prompter
	c.QueryService.Prompter = prompter
}

func buildLedger(cfg domain.Config) ports.HistoryLedger {
	if cfg.History.Backend == "jsonl" {
		return history.NewFileStore()
	}
	return history.NewSQLiteStore(cfg.History.RetainDays)
}
