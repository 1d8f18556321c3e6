package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/tai-go/internal/app"
)

// newContextCommand surfaces the extra context sources usable with the
// query command's -c and -C flags.
func newContextCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Inspect the extra context sources",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the available context sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, src := range container.Collector.Sources() {
				fmt.Fprintf(out, "%-12s %s\n", src.Name, src.Description)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <source>",
		Short: "Gather and print one context source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := container.Collector.Gather(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report)
			return nil
		},
	})

	return cmd
}
