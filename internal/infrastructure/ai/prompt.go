package ai

import (
	"fmt"
	"strings"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/ports"
)

// buildMessages shapes the chat messages for each task kind.
func buildMessages(req ports.ProviderRequest) []domain.PromptMessage {
	switch req.Task {
	case ports.TaskPlan:
		return planMessages(req)
	case ports.TaskCorrect:
		return correctMessages(req)
	case ports.TaskExplain:
		return explainMessages(req)
	case ports.TaskChat:
		return req.Messages
	case ports.TaskChooseContext:
		return chooseContextMessages(req)
	default:
		return generateMessages(req)
	}
}

func generateMessages(req ports.ProviderRequest) []domain.PromptMessage {
	ask := fmt.Sprintf("Generate a single shell command to %s", req.Prompt)
	if req.Alternatives > 1 {
		ask = fmt.Sprintf("Generate %d different shell commands, one per line, each of which would %s",
			req.Alternatives, req.Prompt)
	}
	return []domain.PromptMessage{
		{
			Role: "system",
			Content: "You output only terminal commands. No explanations, no comments, no backticks. " +
				systemInfo(req.Context),
		},
		{
			Role:    "user",
			Content: ask + "\n" + contextSnippet(req.Context),
		},
	}
}

func planMessages(req ports.ProviderRequest) []domain.PromptMessage {
	return []domain.PromptMessage{
		{
			Role: "system",
			Content: "You output only terminal commands, one per line, in execution order. " +
				"No explanations, no comments, no backticks, no numbering. " +
				systemInfo(req.Context),
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("Generate the shell commands, in order, to %s\n%s", req.Prompt, contextSnippet(req.Context)),
		},
	}
}

func correctMessages(req ports.ProviderRequest) []domain.PromptMessage {
	return []domain.PromptMessage{
		{
			Role: "system",
			Content: "You fix failing shell commands. Output only the corrected command. " +
				"No explanations, no comments, no backticks. " +
				systemInfo(req.Context),
		},
		{
			Role: "user",
			Content: fmt.Sprintf(
				"The command:\n%s\nfailed with this error output:\n%s\nProvide a corrected command that accomplishes the same goal.",
				req.FailedCommand, req.FailureOutput,
			),
		},
	}
}

func explainMessages(req ports.ProviderRequest) []domain.PromptMessage {
	return []domain.PromptMessage{
		{
			Role:    "system",
			Content: "Explain the purpose of the command with details for each option. Be concise.",
		},
		{
			Role:    "user",
			Content: req.Prompt,
		},
	}
}

// chooseContextMessages asks which numbered source would help with the
// request. The model must answer with the index alone, or -1 for none.
func chooseContextMessages(req ports.ProviderRequest) []domain.PromptMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "To generate a shell command for the request %q, which of the following would be the most helpful context?\n", req.Prompt)
	for i, choice := range req.Choices {
		fmt.Fprintf(&b, "%d. %s\n", i, choice.Description)
	}
	b.WriteString("Answer with the number alone, or -1 if none of them helps.")
	return []domain.PromptMessage{
		{
			Role:    "system",
			Content: "You can output only a number.",
		},
		{
			Role:    "user",
			Content: b.String(),
		},
	}
}

func systemInfo(ctx domain.ContextSnapshot) string {
	var parts []string
	if ctx.OS != "" {
		parts = append(parts, fmt.Sprintf("This system runs %s.", ctx.OS))
	}
	if ctx.Shell != "" {
		parts = append(parts, fmt.Sprintf("The shell is %s.", ctx.Shell))
	}
	return strings.Join(parts, " ")
}

// contextSnippet renders the working directory listing, capped so a large
// directory cannot blow up the prompt.
func contextSnippet(ctx domain.ContextSnapshot) string {
	if ctx.WorkingDir == "" && ctx.Extra == "" {
		return ""
	}
	var b strings.Builder
	if ctx.WorkingDir != "" {
		fmt.Fprintf(&b, "The command runs in %s", ctx.WorkingDir)
	}
	if len(ctx.Files) > 0 {
		b.WriteString(" containing the files:\n")
		b.WriteString(strings.Join(ctx.Files, "\n"))
	}
	if ctx.Extra != "" {
		b.WriteString("\n")
		b.WriteString(ctx.Extra)
	}
	snippet := b.String()
	if len(snippet) > 3000 {
		snippet = snippet[:3000]
	}
	return snippet
}
