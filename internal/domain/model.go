package domain

// ModelDefinition describes an AI provider configuration declared in the
// config file. Each model represents a specific service endpoint with its
// authentication and generation parameters.
type ModelDefinition struct {
	Name       string `yaml:"name"`
	Endpoint   string `yaml:"endpoint"`
	AuthEnvVar string `yaml:"auth_env_var"`
	ModelID    string `yaml:"model_id"`
	MaxTokens  int    `yaml:"max_tokens"`
}

// PromptMessage follows the role/content pair required by most chat APIs.
// The json tags serve the persisted chat transcript.
type PromptMessage struct {
	Role    string `yaml:"role" json:"role"`
	Content string `yaml:"content" json:"content"`
}

// ProviderKind identifies the wire protocol a model endpoint speaks.
type ProviderKind string

const (
	ProviderKindAnthropic ProviderKind = "anthropic"
	ProviderKindOpenAI    ProviderKind = "openai"
	ProviderKindOllama    ProviderKind = "ollama"
	ProviderKindUnknown   ProviderKind = "unknown"
)
