package domain

// ContextSnapshot carries environment details used to enrich AI prompts.
type ContextSnapshot struct {
	WorkingDir string
	Shell      string
	OS         string
	User       string
	Files      []string
	// Extra holds the output of an additionally requested context source,
	// capped so a large report cannot blow up the prompt.
	Extra string
}

// ContextSource names one gatherable source of extra prompt context.
type ContextSource struct {
	Name        string
	Description string
}
