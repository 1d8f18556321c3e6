package executor

import (
	"context"
	"strings"
	"testing"
)

func TestExecuteCapturesStdout(t *testing.T) {
	e := NewLocalExecutor("/bin/sh")
	result, err := e.Execute(context.Background(), "echo hello")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if !result.Succeeded || result.ExitCode != 0 {
		t.Fatalf("expected success, got %+v", result)
	}
	if strings.TrimSpace(result.Stdout) != "hello" {
		t.Fatalf("stdout = %q, want hello", result.Stdout)
	}
}

func TestExecuteNonZeroExitIsNotAnError(t *testing.T) {
	e := NewLocalExecutor("/bin/sh")
	result, err := e.Execute(context.Background(), "ls /definitely/not/a/path")
	if err != nil {
		t.Fatalf("non-zero exit must not surface as an error, got %v", err)
	}
	if result.Succeeded {
		t.Fatal("expected Succeeded=false")
	}
	if result.ExitCode == 0 {
		t.Fatal("expected non-zero exit code")
	}
	if result.Stderr == "" {
		t.Fatal("expected stderr text for the failing command")
	}
}

func TestExecuteExitCodePropagates(t *testing.T) {
	e := NewLocalExecutor("/bin/sh")
	result, err := e.Execute(context.Background(), "exit 42")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.ExitCode != 42 {
		t.Fatalf("exit code = %d, want 42", result.ExitCode)
	}
}

func TestNewLocalExecutorDefaultsShell(t *testing.T) {
	e := NewLocalExecutor("")
	if e.Shell() == "" {
		t.Fatal("expected a shell to be selected")
	}
	if got := NewLocalExecutor("auto").Shell(); got == "auto" {
		t.Fatal("auto must resolve to a concrete shell")
	}
}
