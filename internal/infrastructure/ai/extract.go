package ai

import "strings"

// extractCommand pulls a single shell command out of a model reply, handling
// fenced code blocks and "command:" prefixed lines that some models emit
// despite the instructions.
func extractCommand(content string) string {
	if code := extractCodeBlock(content); code != "" {
		return firstLine(code)
	}
	if cmd := extractCommandLine(content); cmd != "" {
		return cmd
	}
	return firstLine(strings.TrimSpace(content))
}

// splitCommands turns a reply into an ordered command list, one per line,
// dropping fences, blank lines and list numbering.
func splitCommands(content string) []string {
	if code := extractCodeBlock(content); code != "" {
		content = code
	}
	var commands []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = trimListMarker(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "```") {
			continue
		}
		commands = append(commands, line)
	}
	return commands
}

func extractCodeBlock(content string) string {
	if !strings.Contains(content, "```") {
		return ""
	}

	start := strings.Index(content, "```")
	suffix := content[start+3:]
	end := strings.Index(suffix, "```")
	if end == -1 {
		return ""
	}

	block := suffix[:end]
	lines := strings.Split(block, "\n")
	if len(lines) > 0 && isLanguageTag(lines[0]) {
		lines = lines[1:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func isLanguageTag(line string) bool {
	tag := strings.ToLower(strings.TrimSpace(line))
	switch tag {
	case "sh", "shell", "bash", "zsh", "console":
		return true
	}
	return false
}

func extractCommandLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "command:") {
			return strings.TrimSpace(line[len("command:"):])
		}
	}
	return ""
}

func trimListMarker(line string) string {
	trimmed := strings.TrimLeft(line, "0123456789")
	if trimmed != line {
		trimmed = strings.TrimPrefix(trimmed, ".")
		trimmed = strings.TrimPrefix(trimmed, ")")
		return strings.TrimSpace(trimmed)
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "- "))
}

func firstLine(content string) string {
	if idx := strings.Index(content, "\n"); idx >= 0 {
		return strings.TrimSpace(content[:idx])
	}
	return content
}
