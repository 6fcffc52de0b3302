// Package config loads the settings shared by the completion client, the
// consensus sampler and the CLI.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/utils"
)

type Config struct {
	Provider     string            `env:"LLM_PROVIDER" envDefault:"openai" validate:"required"`
	Model        string            `env:"LLM_MODEL" envDefault:"gpt-4o-mini" validate:"required"`
	Endpoint     string            `env:"LLM_ENDPOINT" validate:"omitempty,url"`
	Temperature  float64           `env:"LLM_TEMPERATURE" envDefault:"0.7" validate:"gte=0,lte=2"`
	MaxTokens    int               `env:"LLM_MAX_TOKENS" envDefault:"500" validate:"gte=1"`
	Timeout      time.Duration     `env:"LLM_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	MaxRetries   int               `env:"LLM_MAX_RETRIES" envDefault:"3" validate:"gte=0"`
	RetryDelay   time.Duration     `env:"LLM_RETRY_DELAY" envDefault:"2s" validate:"gte=0"`
	RateLimit    float64           `env:"LLM_RATE_LIMIT" envDefault:"0" validate:"gte=0"`
	RateBurst    int               `env:"LLM_RATE_BURST" envDefault:"1" validate:"gte=1"`
	Seed         *int              `env:"LLM_SEED"`
	LogLevel     utils.LogLevel    `env:"LLM_LOG_LEVEL" envDefault:"WARN"`
	APIKeys      map[string]string `validate:"-"`
	ExtraHeaders map[string]string `validate:"-"`
	Logger       utils.Logger      `validate:"-"`
	Consensus    ConsensusConfig
}

// ConsensusConfig holds the self-consistency sampling defaults.
type ConsensusConfig struct {
	Samples     int           `env:"CONSENSUS_SAMPLES" envDefault:"5" validate:"gte=1"`
	Temperature float64       `env:"CONSENSUS_TEMPERATURE" envDefault:"0.7" validate:"gte=0,lte=2"`
	Concurrency int           `env:"CONSENSUS_CONCURRENCY" envDefault:"4" validate:"gte=1"`
	Timeout     time.Duration `env:"CONSENSUS_TIMEOUT" envDefault:"60s" validate:"gt=0"`
}

var validate = validator.New()

// LoadConfig reads the environment. Every variable ending in _API_KEY is
// recorded under the lower-cased provider prefix.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		APIKeys:      make(map[string]string),
		ExtraHeaders: make(map[string]string),
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	loadAPIKeys(cfg)
	return cfg, nil
}

func loadAPIKeys(cfg *Config) {
	for _, envVar := range os.Environ() {
		key, value, found := strings.Cut(envVar, "=")
		if found && strings.HasSuffix(strings.ToUpper(key), "_API_KEY") && value != "" {
			provider := strings.TrimSuffix(strings.ToUpper(key), "_API_KEY")
			cfg.APIKeys[strings.ToLower(provider)] = value
		}
	}
}

// Validate checks the struct tags. Providers other than ollama need a key.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Provider != "ollama" && c.APIKeys[c.Provider] == "" {
		return fmt.Errorf("invalid config: no API key for provider %q (set %s_API_KEY)",
			c.Provider, strings.ToUpper(c.Provider))
	}
	return nil
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	return c.APIKeys[c.Provider]
}

type ConfigOption func(*Config)

func NewConfig() *Config {
	return &Config{
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		Temperature:  0.7,
		MaxTokens:    500,
		Timeout:      30 * time.Second,
		MaxRetries:   3,
		RetryDelay:   2 * time.Second,
		RateBurst:    1,
		APIKeys:      make(map[string]string),
		LogLevel:     utils.LogLevelWarn,
		ExtraHeaders: make(map[string]string),
		Consensus: ConsensusConfig{
			Samples:     5,
			Temperature: 0.7,
			Concurrency: 4,
			Timeout:     60 * time.Second,
		},
	}
}

func SetProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

func SetModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

func SetEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.Endpoint = endpoint
	}
}

func SetTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

func SetMaxTokens(maxTokens int) ConfigOption {
	return func(c *Config) {
		if maxTokens < 1 {
			maxTokens = 1
		}
		c.MaxTokens = maxTokens
	}
}

func SetTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// SetAPIKey stores the key under the provider configured so far, so apply it
// after SetProvider.
func SetAPIKey(apiKey string) ConfigOption {
	return func(c *Config) {
		if c.APIKeys == nil {
			c.APIKeys = make(map[string]string)
		}
		c.APIKeys[c.Provider] = apiKey
	}
}

func SetMaxRetries(maxRetries int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
	}
}

func SetRetryDelay(retryDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = retryDelay
	}
}

// SetRateLimit caps requests per second; zero disables the limiter.
func SetRateLimit(perSecond float64, burst int) ConfigOption {
	return func(c *Config) {
		c.RateLimit = perSecond
		if burst < 1 {
			burst = 1
		}
		c.RateBurst = burst
	}
}

func SetSeed(seed int) ConfigOption {
	return func(c *Config) {
		c.Seed = &seed
	}
}

func SetLogLevel(level utils.LogLevel) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

func SetLogger(logger utils.Logger) ConfigOption {
	return func(c *Config) {
		c.Logger = logger
	}
}

func SetExtraHeaders(headers map[string]string) ConfigOption {
	return func(c *Config) {
		if c.ExtraHeaders == nil {
			c.ExtraHeaders = make(map[string]string)
		}
		for k, v := range headers {
			c.ExtraHeaders[k] = v
		}
	}
}

func SetConsensusSamples(samples int) ConfigOption {
	return func(c *Config) {
		c.Consensus.Samples = samples
	}
}

func SetConsensusTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Consensus.Temperature = temperature
	}
}

func SetConsensusConcurrency(n int) ConfigOption {
	return func(c *Config) {
		c.Consensus.Concurrency = n
	}
}

func SetConsensusTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Consensus.Timeout = timeout
	}
}

func ApplyOptions(cfg *Config, options ...ConfigOption) {
	for _, option := range options {
		option(cfg)
	}
}

// GetLogger returns the configured logger or a stderr logger at LogLevel.
func (c *Config) GetLogger() utils.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return utils.NewLogger(c.LogLevel)
}
