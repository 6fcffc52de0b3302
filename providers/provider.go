// Package providers adapts the hosted completion APIs (OpenAI chat
// completions, Anthropic messages, Ollama chat) to one request/response shape.
package providers

import (
	"github.com/adityapatel143/GenAi-Prompt-Engineering/config"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/utils"
)

// Provider is implemented by every completion API adapter.
type Provider interface {
	Name() string
	Endpoint() string
	Headers() map[string]string
	SetExtraHeaders(extraHeaders map[string]string)
	SetDefaultOptions(cfg *config.Config)
	SetOption(key string, value any)
	SetLogger(logger utils.Logger)

	// SupportsJSONSchema reports whether the API can constrain output to a
	// JSON schema natively. When false the caller embeds the schema in the prompt.
	SupportsJSONSchema() bool

	PrepareRequest(req *Request, options map[string]any) ([]byte, error)
	ParseResponse(body []byte) (*Response, error)
}

// ProviderConstructor creates a provider instance.
type ProviderConstructor func(apiKey, model string, extraHeaders map[string]string) Provider

// Option keys understood by every provider. Each adapter maps them onto its
// own wire names.
const (
	OptionTemperature = "temperature"
	OptionMaxTokens   = "max_tokens"
	OptionSeed        = "seed"
)

// base carries the state every adapter shares.
type base struct {
	apiKey       string
	model        string
	endpoint     string
	extraHeaders map[string]string
	options      map[string]any
	logger       utils.Logger
}

func newBase(apiKey, model, endpoint string, extraHeaders map[string]string) base {
	headers := make(map[string]string, len(extraHeaders))
	for k, v := range extraHeaders {
		headers[k] = v
	}
	return base{
		apiKey:       apiKey,
		model:        model,
		endpoint:     endpoint,
		extraHeaders: headers,
		options:      make(map[string]any),
		logger:       utils.NewNopLogger(),
	}
}

func (b *base) Endpoint() string { return b.endpoint }

func (b *base) SetLogger(logger utils.Logger) { b.logger = logger }

func (b *base) SetOption(key string, value any) {
	b.options[key] = value
	b.logger.Debug("Option set", "key", key, "value", value)
}

func (b *base) SetExtraHeaders(extraHeaders map[string]string) {
	for k, v := range extraHeaders {
		b.extraHeaders[k] = v
	}
	b.logger.Debug("Extra headers set", "count", len(extraHeaders))
}

// SetDefaultOptions copies sampling defaults and the endpoint override from cfg.
func (b *base) SetDefaultOptions(cfg *config.Config) {
	b.SetOption(OptionTemperature, cfg.Temperature)
	b.SetOption(OptionMaxTokens, cfg.MaxTokens)
	if cfg.Seed != nil {
		b.SetOption(OptionSeed, *cfg.Seed)
	}
	if cfg.Endpoint != "" {
		b.endpoint = cfg.Endpoint
	}
	b.SetExtraHeaders(cfg.ExtraHeaders)
}

// merged returns provider defaults overlaid with per-call options.
func (b *base) merged(options map[string]any) map[string]any {
	out := make(map[string]any, len(b.options)+len(options))
	for k, v := range b.options {
		out[k] = v
	}
	for k, v := range options {
		out[k] = v
	}
	return out
}

func (b *base) headers(auth map[string]string) map[string]string {
	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range auth {
		headers[k] = v
	}
	for k, v := range b.extraHeaders {
		headers[k] = v
	}
	return headers
}
