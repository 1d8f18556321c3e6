package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/tai-go/internal/app"
	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/services"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}
	container.AttachPrompter(NewPrompter(nil, nil))

	queryCmd := newQueryCommand(container)

	root := &cobra.Command{
		Use:   "tai [request]",
		Short: "TAI - terminal AI assistant",
		Long:  "TAI turns natural language into shell commands, classifies their risk and asks before running anything it cannot prove safe.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			queryCmd.SetArgs(args)
			return queryCmd.ExecuteContext(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(queryCmd)
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newConfigCommand(container))
	root.AddCommand(newPatternsCommand(container))
	root.AddCommand(newCacheCommand(container))
	root.AddCommand(newChatCommand(container))
	root.AddCommand(newContextCommand(container))
	root.AddCommand(newVersionCommand())
	return root, nil
}

func newQueryCommand(container *app.Container) *cobra.Command {
	var (
		model         string
		multiStep     bool
		explain       bool
		noCache       bool
		autoContext   bool
		contextSource string
	)

	// No deadline is placed on the request context: model calls are bounded
	// by the configured timeout inside the service, while an approved command
	// runs as long as it needs to.
	cmd := &cobra.Command{
		Use:   "query [natural language]",
		Short: "Generate and run a command from natural language",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := container.QueryService.Run(services.QueryRequest{
				Context:       cmd.Context(),
				Prompt:        strings.Join(args, " "),
				ModelOverride: model,
				MultiStep:     multiStep,
				Explain:       explain,
				NoCache:       noCache,
				AutoContext:   autoContext,
				ContextSource: contextSource,
			})
			RenderResponse(cmd.OutOrStdout(), resp)
			if errors.Is(err, domain.ErrPlanDeclined) || errors.Is(err, domain.ErrStepDeclined) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Override model name (default from config)")
	cmd.Flags().BoolVarP(&multiStep, "plan", "p", false, "Allow a multi-step plan instead of a single command")
	cmd.Flags().BoolVarP(&explain, "explain", "e", false, "Describe what would run without running it")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the response cache")
	cmd.Flags().BoolVarP(&autoContext, "context", "c", false, "Let the model pick an extra context source for the prompt")
	cmd.Flags().StringVarP(&contextSource, "with-context", "C", "", "Include a named context source (see 'tai context list')")

	return cmd
}
