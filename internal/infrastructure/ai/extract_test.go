package ai

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractCommandStripsFences(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{"```bash\nls -la\n```", "ls -la"},
		{"```\ndf -h\n```", "df -h"},
		{"ls -la", "ls -la"},
		{"Command: du -sh .", "du -sh ."},
		{"  tar -czf a.tgz src  \nsecond line", "tar -czf a.tgz src"},
	}
	for _, tc := range cases {
		if got := extractCommand(tc.content); got != tc.want {
			t.Errorf("extractCommand(%q) = %q, want %q", tc.content, got, tc.want)
		}
	}
}

func TestSplitCommandsKeepsOrder(t *testing.T) {
	content := "```sh\nmkdir build\ncd build\ncmake ..\n```"
	want := []string{"mkdir build", "cd build", "cmake .."}
	if diff := cmp.Diff(want, splitCommands(content)); diff != "" {
		t.Fatalf("splitCommands mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitCommandsDropsNumberingAndBlanks(t *testing.T) {
	content := "1. git add .\n\n2) git commit -m 'x'\n- git push\n# a comment\n"
	want := []string{"git add .", "git commit -m 'x'", "git push"}
	if diff := cmp.Diff(want, splitCommands(content)); diff != "" {
		t.Fatalf("splitCommands mismatch (-want +got):\n%s", diff)
	}
}

func TestInferProviderKind(t *testing.T) {
	cases := []struct {
		endpoint string
		name     string
		want     string
	}{
		{"https://api.anthropic.com/v1/messages", "claude", "anthropic"},
		{"https://api.openai.com/v1/chat/completions", "gpt", "openai"},
		{"http://localhost:11434/v1/chat/completions", "llama", "openai"},
		{"http://localhost:9999/generate", "ollama-local", "ollama"},
		{"", "mystery", "unknown"},
	}
	for _, tc := range cases {
		if got := string(inferProviderKind(tc.endpoint, tc.name)); got != tc.want {
			t.Errorf("inferProviderKind(%q, %q) = %q, want %q", tc.endpoint, tc.name, got, tc.want)
		}
	}
}
