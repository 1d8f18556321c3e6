package cli

import (
	"fmt"
	"io"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/services"
)

// RenderResponse prints the outcome in a plain, ASCII-only format.
func RenderResponse(out io.Writer, resp services.QueryResponse) {
	if resp.Explanation != "" {
		for _, step := range resp.Plan.Steps {
			fmt.Fprintf(out, "  %s\n", step.Text)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, resp.Explanation)
		return
	}
	if resp.FromCache {
		fmt.Fprintln(out, "(served from cache)")
	}

	for _, outcome := range resp.Sequence.Completed {
		if outcome.Result.Stdout != "" {
			fmt.Fprint(out, outcome.Result.Stdout)
			if outcome.Result.Stdout[len(outcome.Result.Stdout)-1] != '\n' {
				fmt.Fprintln(out)
			}
		}
		if outcome.Result.Stderr != "" {
			fmt.Fprint(out, outcome.Result.Stderr)
			if outcome.Result.Stderr[len(outcome.Result.Stderr)-1] != '\n' {
				fmt.Fprintln(out)
			}
		}
	}

	switch resp.Sequence.State {
	case domain.SequenceCompleted:
		if len(resp.Sequence.Completed) > 1 {
			fmt.Fprintf(out, "All %d steps completed.\n", len(resp.Sequence.Completed))
		}
	case domain.SequenceAborted:
		fmt.Fprintf(out, "Aborted: %s\n", resp.Sequence.AbortReason)
		if done := len(resp.Sequence.Completed); done > 0 {
			fmt.Fprintf(out, "%d step(s) had already completed.\n", done)
		}
	}
}
