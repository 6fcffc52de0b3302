package llm

import "github.com/adityapatel143/GenAi-Prompt-Engineering/providers"

// GenerateOption overrides provider defaults for a single call.
type GenerateOption func(*generateConfig)

type generateConfig struct {
	options      map[string]any
	systemPrompt string
}

func newGenerateConfig(opts []GenerateOption) *generateConfig {
	cfg := &generateConfig{options: make(map[string]any)}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Options resolves opts into provider option keys. LLM implementations
// outside this package use it to honour per-call settings.
func Options(opts ...GenerateOption) map[string]any {
	return newGenerateConfig(opts).options
}

// WithTemperature sets the sampling temperature for this call only.
// Self-consistency uses it to draw diverse samples from one client.
func WithTemperature(temperature float64) GenerateOption {
	return func(c *generateConfig) {
		c.options[providers.OptionTemperature] = temperature
	}
}

func WithMaxTokens(maxTokens int) GenerateOption {
	return func(c *generateConfig) {
		c.options[providers.OptionMaxTokens] = maxTokens
	}
}

// WithSeed asks providers that support it for reproducible sampling.
func WithSeed(seed int) GenerateOption {
	return func(c *generateConfig) {
		c.options[providers.OptionSeed] = seed
	}
}

// WithSystemInstruction replaces the prompt's system prompt for this call.
func WithSystemInstruction(system string) GenerateOption {
	return func(c *generateConfig) {
		c.systemPrompt = system
	}
}
