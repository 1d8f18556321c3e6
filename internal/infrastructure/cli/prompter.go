// Package cli is the cobra command surface and interactive prompting layer.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/ports"
)

// Prompter implements ConfirmationPrompter over stdio.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter constructs a prompter referencing stdio.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	interactive := true
	if in == nil {
		in = os.Stdin
		if info, err := os.Stdin.Stat(); err == nil {
			interactive = info.Mode()&os.ModeCharDevice != 0
		}
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// Enabled reports whether the session can actually collect answers. Piped
// stdin counts as non-interactive, so gated commands are declined instead
// of hanging on a read.
func (p *Prompter) Enabled() bool {
	return p.interactive
}

// ApprovePlan shows the full plan with verdicts and asks once for the whole
// sequence.
func (p *Prompter) ApprovePlan(plan domain.Plan) (bool, error) {
	fmt.Fprintln(p.out)
	if len(plan.Steps) == 1 {
		fmt.Fprintln(p.out, "Proposed command:")
	} else {
		fmt.Fprintf(p.out, "Proposed plan (%d steps):\n", len(plan.Steps))
	}
	for i, step := range plan.Steps {
		fmt.Fprintf(p.out, "  %d. %s%s\n", i+1, step.Text, verdictTag(step))
	}
	return p.ask("Run this? [y/N]: ")
}

// ConfirmStep gates one step inside an approved sequence.
func (p *Prompter) ConfirmStep(step domain.CommandStep) (bool, error) {
	fmt.Fprintln(p.out)
	switch step.Verdict {
	case domain.VerdictDangerous:
		fmt.Fprintf(p.out, "WARNING: %s\n", warnReason(step))
		fmt.Fprintf(p.out, "Command:\n  %s\n", step.Text)
		return p.askExplicit()
	default:
		fmt.Fprintf(p.out, "Command:\n  %s%s\n", step.Text, verdictTag(step))
		return p.ask("Execute? [y/N]: ")
	}
}

// ChooseAlternative lists replacement candidates and returns the chosen
// index, or -1 when the user passes.
func (p *Prompter) ChooseAlternative(steps []domain.CommandStep) (int, error) {
	fmt.Fprintln(p.out, "\nAlternatives:")
	for i, step := range steps {
		fmt.Fprintf(p.out, "  %d. %s%s\n", i+1, step.Text, verdictTag(step))
	}
	fmt.Fprintf(p.out, "Pick one [1-%d, Enter to cancel]: ", len(steps))

	line, err := p.in.ReadString('\n')
	if err != nil {
		return -1, err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(steps) {
		return -1, nil
	}
	return n - 1, nil
}

func (p *Prompter) ask(prompt string) (bool, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes", nil
}

func (p *Prompter) askExplicit() (bool, error) {
	fmt.Fprint(p.out, "Type 'yes' to run anyway (anything else cancels): ")
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(line) == "yes", nil
}

func verdictTag(step domain.CommandStep) string {
	switch step.Verdict {
	case domain.VerdictSafe:
		return "  [safe]"
	case domain.VerdictDangerous:
		return "  [DANGEROUS: " + warnReason(step) + "]"
	default:
		return "  [unclassified]"
	}
}

func warnReason(step domain.CommandStep) string {
	if step.Reason != "" {
		return step.Reason
	}
	return "matched a dangerous pattern"
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
