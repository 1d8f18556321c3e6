// Package executor runs shell commands on the host. It is the only adapter
// with real-world side effects; callers must obtain confirmation gate
// approval before invoking it.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/ports"
)

// LocalExecutor runs commands on the host shell.
type LocalExecutor struct {
	shell string
}

// NewLocalExecutor builds a new executor, shell defaults to $SHELL then /bin/sh.
func NewLocalExecutor(shell string) *LocalExecutor {
	if shell == "" || shell == "auto" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	return &LocalExecutor{shell: shell}
}

// Shell returns the shell binary used for invocations.
func (e *LocalExecutor) Shell() string {
	return e.shell
}

// Execute implements ports.CommandExecutor. The command runs as a single
// shell invocation. A non-zero exit status is reported through the result
// with Succeeded=false and a nil error; only a failure to start the shell
// returns an error.
func (e *LocalExecutor) Execute(ctx context.Context, command string) (domain.ExecutionResult, error) {
	c := exec.CommandContext(ctx, e.shell, "-c", command)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	duration := time.Since(start).Milliseconds()

	result := domain.ExecutionResult{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		Succeeded:  err == nil,
		DurationMS: duration,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		result.ExitCode = -1
		return result, err
	}
	return result, nil
}

var _ ports.CommandExecutor = (*LocalExecutor)(nil)
