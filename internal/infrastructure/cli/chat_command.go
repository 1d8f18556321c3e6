package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/tai-go/internal/app"
)

// newChatCommand starts a free-form conversation with the model. Replies are
// printed, never executed, and the transcript survives between sessions.
func newChatCommand(container *app.Container) *cobra.Command {
	var (
		model string
		fresh bool
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with the model (nothing is executed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fresh {
				if err := container.ChatService.Reset(); err != nil {
					return fmt.Errorf("clear chat transcript: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Chat transcript cleared.")
				if len(args) == 0 {
					return nil
				}
			}

			out := cmd.OutOrStdout()
			in := bufio.NewScanner(cmd.InOrStdin())

			prompt := strings.Join(args, " ")
			if prompt == "" {
				fmt.Fprint(out, "You: ")
				if !in.Scan() {
					return in.Err()
				}
				prompt = strings.TrimSpace(in.Text())
				if prompt == "" {
					return nil
				}
			}

			for {
				reply, err := container.ChatService.Send(cmd.Context(), prompt, model)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "AI: %s\n", reply)

				fmt.Fprint(out, "You: ")
				if !in.Scan() {
					fmt.Fprintln(out)
					return in.Err()
				}
				prompt = strings.TrimSpace(in.Text())
				if prompt == "" {
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Override model name (default from config)")
	cmd.Flags().BoolVar(&fresh, "new", false, "Clear the stored transcript before chatting")

	return cmd
}
