package config

// DefaultIgnores are glob patterns excluded from indexing by default.
var DefaultIgnores = []string{
	"vendor/**",
	"node_modules/**",
	".git/**",
	"dist/**",
	"build/**",
	"*.min.js",
	"*.min.css",
	"*.lock",
	"go.sum",
	"package-lock.json",
	"yarn.lock",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o-mini",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		DataDir:           ".gitscout",
		Port:              8764,
		Amplification:     AmplificationLow,
		Depth:             DepthMid,
		IgnoreFiles:       DefaultIgnores,
		LLMThreads:        20,
		LLMRPM:            300,
		AmplifyThreads:    10,
		FileReadThreads:   100,
		RequestTimeoutSec: 120,
		MaxRetries:        3,
	}
}
