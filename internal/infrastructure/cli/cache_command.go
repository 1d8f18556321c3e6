package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/tai-go/internal/app"
)

func newCacheCommand(container *app.Container) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the response cache",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List cached responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := container.CacheStore.Entries()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "cache is empty")
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s | %s | %s\n",
					entry.Key, entry.Model, entry.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.CacheStore.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache size and location",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := container.CacheStore.Entries()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "entries: %d\n", len(entries))
			fmt.Fprintf(cmd.OutOrStdout(), "dir:     %s\n", container.CacheStore.Dir())
			return nil
		},
	}

	cacheCmd.AddCommand(listCmd, clearCmd, statsCmd)
	return cacheCmd
}
