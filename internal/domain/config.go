package domain

// Config mirrors ~/.tai/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Safety              SafetySettings    `yaml:"safety"`
	Execution           ExecutionSettings `yaml:"execution"`
	History             HistorySettings   `yaml:"history"`
	Context             ContextSettings   `yaml:"context"`
	Models              []ModelDefinition `yaml:"models"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultModel   string `yaml:"default_model"`
	Alternatives   int    `yaml:"alternatives"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// SafetySettings defines classification and gating behavior.
type SafetySettings struct {
	// Mode 0 always asks; mode 1 auto-runs commands with a safe verdict.
	Mode               SafetyMode `yaml:"mode"`
	PatternsDir        string     `yaml:"patterns_dir"`
	AutocorrectEnabled bool       `yaml:"autocorrect"`
	MaxCorrectAttempts int        `yaml:"max_correct_attempts"`
}

// ExecutionSettings controls how commands run.
type ExecutionSettings struct {
	Shell            string `yaml:"shell"`
	MultiStepEnabled bool   `yaml:"multi_step"`
}

// HistorySettings controls the command ledger.
type HistorySettings struct {
	Backend    string `yaml:"backend"`
	RetainDays int    `yaml:"retain_days"`
}

// ContextSettings configures prompt context collection.
type ContextSettings struct {
	IncludeFiles bool `yaml:"include_files"`
	MaxFiles     int  `yaml:"max_files"`
}
