package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/doeshing/tai-go/assets"
	"github.com/doeshing/tai-go/internal/app"
	"github.com/doeshing/tai-go/internal/domain"
)

func newPatternsCommand(container *app.Container) *cobra.Command {
	patternsCmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect or materialize the risk pattern files",
	}

	showCmd := &cobra.Command{
		Use:       "show [dangerous|safe]",
		Short:     "List the loaded patterns with their labels",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"dangerous", "safe"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			set := container.Classifier.Set()
			which := ""
			if len(args) == 1 {
				which = args[0]
			}
			if which == "" || which == "dangerous" {
				fmt.Fprintln(out, "dangerous:")
				for _, pattern := range set.Dangerous {
					fmt.Fprintf(out, "  %-40s %s\n", pattern.Regex.String(), pattern.Label)
				}
			}
			if which == "" || which == "safe" {
				fmt.Fprintln(out, "safe:")
				for _, pattern := range set.Safe {
					fmt.Fprintf(out, "  %-40s %s\n", pattern.Regex.String(), pattern.Label)
				}
			}
			for _, warning := range container.Classifier.Warnings() {
				fmt.Fprintf(out, "warning: %s\n", warning)
			}
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show where pattern files are read from",
		RunE: func(cmd *cobra.Command, args []string) error {
			dangerous, safe := container.Classifier.SourceFiles()
			fmt.Fprintln(cmd.OutOrStdout(), dangerous)
			fmt.Fprintln(cmd.OutOrStdout(), safe)
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in pattern files for editing",
		RunE: func(cmd *cobra.Command, args []string) error {
			dangerous, safe := container.Classifier.SourceFiles()
			dir := filepath.Dir(dangerous)
			if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
				return err
			}
			if err := writeIfAbsent(dangerous, assets.DefaultDangerousPatterns); err != nil {
				return err
			}
			if err := writeIfAbsent(safe, assets.DefaultSafePatterns); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pattern files ready under %s\n", dir)
			return nil
		},
	}

	reloadCmd := &cobra.Command{
		Use:   "reload",
		Short: "Re-read pattern files from disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.ConfigLoader.Load(cmd.Context())
			if err != nil {
				return err
			}
			container.Classifier.Reload(cfg.Safety.PatternsDir, container.Logger)
			set := container.Classifier.Set()
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d dangerous and %d safe patterns\n",
				len(set.Dangerous), len(set.Safe))
			return nil
		},
	}

	classifyCmd := &cobra.Command{
		Use:   "classify <command>",
		Short: "Classify a command without running it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := args[0]
			for _, arg := range args[1:] {
				command += " " + arg
			}
			assessment := container.Classifier.Classify(command)
			fmt.Fprintf(cmd.OutOrStdout(), "verdict: %s\n", assessment.Verdict)
			if assessment.Label != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "rule:    %s\n", assessment.Label)
			}
			return nil
		},
	}

	patternsCmd.AddCommand(showCmd, pathCmd, initCmd, reloadCmd, classifyCmd)
	return patternsCmd
}

func writeIfAbsent(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, data, 0o644)
}
