// Package llm is the completion client: one LLM per configuration, holding a
// provider adapter, an HTTP client and a rate limiter shared by all callers.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/config"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/internal/metrics"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/providers"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/utils"
)

// LLM generates completions. Implementations are safe for concurrent use.
type LLM interface {
	Generate(ctx context.Context, prompt *Prompt, opts ...GenerateOption) (string, error)
	// GenerateWithSchema asks for JSON matching schema and validates the reply.
	// schema is either a JSON schema document (json.RawMessage, []byte) or a
	// Go value whose type the schema is reflected from.
	GenerateWithSchema(ctx context.Context, prompt *Prompt, schema any, opts ...GenerateOption) (string, error)
	GetProvider() string
	GetModel() string
	GetLogger() utils.Logger
	SetLogLevel(level utils.LogLevel)
}

var _ LLM = (*LLMImpl)(nil)

// LLMImpl talks to one provider over HTTP.
type LLMImpl struct {
	Provider   providers.Provider
	client     *http.Client
	limiter    *rate.Limiter
	logger     utils.Logger
	config     *config.Config
	MaxRetries int
	RetryDelay time.Duration
}

func NewLLM(cfg *config.Config, logger utils.Logger, registry *providers.ProviderRegistry) (*LLMImpl, error) {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	if registry == nil {
		registry = providers.NewProviderRegistry()
	}

	provider, err := registry.Get(cfg.Provider, cfg.APIKey(), cfg.Model, cfg.ExtraHeaders)
	if err != nil {
		return nil, NewLLMError(ErrorTypeProvider, "failed to create provider", err)
	}
	provider.SetLogger(logger)
	provider.SetDefaultOptions(cfg)

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &LLMImpl{
		Provider:   provider,
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
		config:     cfg,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	}, nil
}

func (l *LLMImpl) GetProvider() string { return l.Provider.Name() }

func (l *LLMImpl) GetModel() string { return l.config.Model }

func (l *LLMImpl) GetLogger() utils.Logger { return l.logger }

func (l *LLMImpl) SetLogLevel(level utils.LogLevel) {
	l.logger.Debug("Setting internal LLM log level", "new_level", level)
	l.logger.SetLevel(level)
}

// Close releases idle connections held by the HTTP client.
func (l *LLMImpl) Close() {
	l.client.CloseIdleConnections()
}

func (l *LLMImpl) Generate(ctx context.Context, prompt *Prompt, opts ...GenerateOption) (string, error) {
	if err := prompt.Validate(); err != nil {
		return "", NewLLMError(ErrorTypeInvalidInput, "invalid prompt", err)
	}
	gc := newGenerateConfig(opts)
	req := buildRequest(prompt, gc)
	return l.generate(ctx, req, gc.options)
}

func (l *LLMImpl) GenerateWithSchema(ctx context.Context, prompt *Prompt, schema any, opts ...GenerateOption) (string, error) {
	if err := prompt.Validate(); err != nil {
		return "", NewLLMError(ErrorTypeInvalidInput, "invalid prompt", err)
	}
	schemaJSON, err := schemaDocument(schema)
	if err != nil {
		return "", NewLLMError(ErrorTypeInvalidInput, "invalid schema", err)
	}

	gc := newGenerateConfig(opts)
	req := buildRequest(prompt, gc)
	if l.Provider.SupportsJSONSchema() {
		req.ResponseSchema = schemaJSON
	} else {
		last := &req.Messages[len(req.Messages)-1]
		last.Content = preparePromptWithSchema(last.Content, schemaJSON)
	}

	var lastErr error
	for attempt := 0; attempt <= l.MaxRetries; attempt++ {
		result, err := l.generate(ctx, req, gc.options)
		if err != nil {
			return "", err
		}
		cleaned, err := ValidateAgainstSchema(result, schema)
		if err == nil {
			return cleaned, nil
		}
		lastErr = NewLLMError(ErrorTypeResponse, "response does not match schema", err)
		l.logger.Warn("Schema validation failed", "error", err, "attempt", attempt+1)
	}
	return "", lastErr
}

// generate runs the retry loop around one request.
func (l *LLMImpl) generate(ctx context.Context, req *providers.Request, options map[string]any) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= l.MaxRetries; attempt++ {
		l.logger.Debug("Generating text", "provider", l.Provider.Name(), "attempt", attempt+1)

		if err := l.limiter.Wait(ctx); err != nil {
			return "", err
		}

		result, err := l.attemptGenerate(ctx, req, options)
		if err == nil {
			return result, nil
		}
		lastErr = err
		l.logger.Warn("Generation attempt failed", "error", err, "attempt", attempt+1)

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var llmErr *LLMError
		if errors.As(err, &llmErr) && !llmErr.Retryable() {
			return "", err
		}

		if attempt < l.MaxRetries {
			metrics.LLMRetriesTotal.WithLabelValues(l.Provider.Name()).Inc()
			l.logger.Debug("Retrying", "delay", l.RetryDelay)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(l.RetryDelay):
			}
		}
	}
	return "", fmt.Errorf("failed to generate after %d attempts: %w", l.MaxRetries+1, lastErr)
}

func (l *LLMImpl) attemptGenerate(ctx context.Context, req *providers.Request, options map[string]any) (result string, err error) {
	name := l.Provider.Name()
	start := time.Now()
	defer func() {
		status := metrics.StatusOK
		if err != nil {
			status = metrics.StatusFailed
			if ctx.Err() != nil {
				status = metrics.StatusCancelled
			}
		}
		metrics.LLMRequestsTotal.WithLabelValues(name, status).Inc()
		metrics.LLMRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	reqBody, err := l.Provider.PrepareRequest(req, options)
	if err != nil {
		return "", NewLLMError(ErrorTypeRequest, "failed to prepare request", err)
	}

	l.logger.Debug("Request body", "provider", name, "body", string(reqBody))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.Provider.Endpoint(), bytes.NewReader(reqBody))
	if err != nil {
		return "", NewLLMError(ErrorTypeRequest, "failed to create request", err)
	}
	for k, v := range l.Provider.Headers() {
		httpReq.Header.Set(k, v)
	}

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return "", NewLLMError(ErrorTypeRequest, "failed to send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewLLMError(ErrorTypeResponse, "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		l.logger.Error("API error", "provider", name, "status", resp.StatusCode, "body", string(body))
		return "", statusError(resp.StatusCode, body)
	}

	parsed, err := l.Provider.ParseResponse(body)
	if err != nil {
		return "", NewLLMError(ErrorTypeResponse, "failed to parse response", err)
	}
	if parsed.Usage != nil {
		l.logger.Debug("Token usage", "provider", name, "input", parsed.Usage.InputTokens, "output", parsed.Usage.OutputTokens)
	}

	result = parsed.String()
	l.logger.Debug("Text generated successfully", "provider", name, "length", len(result))
	return result, nil
}

func statusError(code int, body []byte) *LLMError {
	errType := ErrorTypeAPI
	switch code {
	case http.StatusTooManyRequests:
		errType = ErrorTypeRateLimit
	case http.StatusUnauthorized, http.StatusForbidden:
		errType = ErrorTypeAuthentication
	}
	e := NewLLMError(errType, fmt.Sprintf("API error: status code %d", code), nil)
	e.StatusCode = code
	if len(body) > 0 {
		e.Err = fmt.Errorf("%s", bytes.TrimSpace(body))
	}
	return e
}

// buildRequest flattens a Prompt into the provider-neutral request: history
// first, then the rendered prompt as the final user turn.
func buildRequest(prompt *Prompt, gc *generateConfig) *providers.Request {
	req := &providers.Request{SystemPrompt: prompt.SystemPrompt}
	if gc.systemPrompt != "" {
		req.SystemPrompt = gc.systemPrompt
	}
	for _, m := range prompt.Messages {
		req.Messages = append(req.Messages, providers.Message{Role: m.Role, Content: m.Content})
	}
	if text := prompt.String(); text != "" {
		req.Messages = append(req.Messages, providers.Message{Role: providers.RoleUser, Content: text})
	}
	return req
}

func preparePromptWithSchema(prompt string, schema json.RawMessage) string {
	return fmt.Sprintf("%s\n\nPlease provide your response in JSON format according to this schema:\n%s", prompt, string(schema))
}
