package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
	ProviderMock   ProviderType = "mock"
)

// AmplificationLevel controls how many synthetic commit messages are generated.
type AmplificationLevel string

const (
	AmplificationOff  AmplificationLevel = "off"
	AmplificationLow  AmplificationLevel = "low"
	AmplificationMid  AmplificationLevel = "mid"
	AmplificationHigh AmplificationLevel = "high"
)

// DepthLevel selects how far back the commit walker goes.
type DepthLevel string

const (
	DepthLow  DepthLevel = "low"
	DepthMid  DepthLevel = "mid"
	DepthHigh DepthLevel = "high"
)

// MatchStrength selects the minimum cosine similarity for commit matches.
type MatchStrength string

const (
	StrengthHigh MatchStrength = "high"
	StrengthMid  MatchStrength = "mid"
	StrengthLow  MatchStrength = "low"
)

// Config is the top-level gitscout configuration, corresponding to .gitscout.yml.
type Config struct {
	Provider          ProviderType       `yaml:"provider" koanf:"provider"`
	Model             string             `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType       `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string             `yaml:"embedding_model" koanf:"embedding_model"`
	DataDir           string             `yaml:"data_dir" koanf:"data_dir"`
	Port              int                `yaml:"port" koanf:"port"`
	Amplification     AmplificationLevel `yaml:"amplification" koanf:"amplification"`
	Depth             DepthLevel         `yaml:"depth" koanf:"depth"`
	IgnoreFiles       []string           `yaml:"ignore_files" koanf:"ignore_files"`
	LLMThreads        int                `yaml:"llm_threads" koanf:"llm_threads"`
	LLMRPM            int                `yaml:"llm_rpm" koanf:"llm_rpm"`
	AmplifyThreads    int                `yaml:"amplify_threads" koanf:"amplify_threads"`
	FileReadThreads   int                `yaml:"file_read_threads" koanf:"file_read_threads"`
	RequestTimeoutSec int                `yaml:"request_timeout_sec" koanf:"request_timeout_sec"`
	MaxRetries        int                `yaml:"max_retries" koanf:"max_retries"`
	UseMockLLM        bool               `yaml:"use_mock_llm" koanf:"use_mock_llm"`
}

// MaxDepth converts a depth level into the walker's commit limit.
func (d DepthLevel) MaxDepth() int {
	switch d {
	case DepthLow:
		return 50
	case DepthHigh:
		return 1000
	default:
		return 250
	}
}

// Threshold returns the minimum cosine similarity for the strength.
func (s MatchStrength) Threshold() float64 {
	switch s {
	case StrengthHigh:
		return 0.40
	case StrengthLow:
		return 0.20
	default:
		return 0.30
	}
}
