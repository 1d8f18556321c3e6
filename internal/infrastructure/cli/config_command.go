package cli

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/tai-go/internal/app"
	"github.com/doeshing/tai-go/internal/infrastructure/config"
)

func newConfigCommand(container *app.Container) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect TAI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, container)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show full configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, container)
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), container.ConfigLoader.Path())
			return nil
		},
	}

	diffCmd := &cobra.Command{
		Use:   "diff",
		Short: "Show how the configuration differs from the defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.ConfigLoader.Load(cmd.Context())
			if err != nil {
				return err
			}
			diff := cmp.Diff(config.DefaultConfig(), cfg)
			if diff == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "configuration matches the defaults")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), diff)
			return nil
		},
	}

	configCmd.AddCommand(showCmd, pathCmd, diffCmd)
	return configCmd
}

func runConfigShow(cmd *cobra.Command, container *app.Container) error {
	cfg, err := container.ConfigLoader.Load(cmd.Context())
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
