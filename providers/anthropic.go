package providers

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"
	// The messages API rejects requests without max_tokens.
	anthropicDefaultMaxTokens = 1024
)

// AnthropicProvider speaks the Anthropic messages API.
type AnthropicProvider struct {
	base
}

func NewAnthropicProvider(apiKey, model string, extraHeaders map[string]string) Provider {
	return &AnthropicProvider{base: newBase(apiKey, model, anthropicEndpoint, extraHeaders)}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) SupportsJSONSchema() bool { return false }

func (p *AnthropicProvider) Headers() map[string]string {
	return p.headers(map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	})
}

type anthropicRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
}

func (p *AnthropicProvider) PrepareRequest(req *Request, options map[string]any) ([]byte, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	opts := p.merged(options)

	body := anthropicRequest{
		Model:       p.model,
		System:      req.SystemPrompt,
		MaxTokens:   anthropicDefaultMaxTokens,
		Temperature: floatOption(opts, OptionTemperature),
	}
	if n := intOption(opts, OptionMaxTokens); n != nil && *n > 0 {
		body.MaxTokens = *n
	}
	// System turns are not allowed inside messages; fold them into system.
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			body.System = strings.TrimSpace(body.System + "\n\n" + m.Content)
			continue
		}
		body.Messages = append(body.Messages, m)
	}

	reqJSON, err := json.Marshal(body)
	if err != nil {
		p.logger.Error("Failed to marshal request", "error", err)
		return nil, err
	}
	p.logger.Debug("Request prepared", "provider", p.Name(), "messages", len(body.Messages))
	return reqJSON, nil
}

func (p *AnthropicProvider) ParseResponse(body []byte) (*Response, error) {
	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		StopReason string `json:"stop_reason"`
		Usage      *struct {
			InputTokens  int64 `json:"input_tokens"`
			OutputTokens int64 `json:"output_tokens"`
		} `json:"usage"`
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode anthropic response: %w", err)
	}
	if response.Error != nil {
		return nil, response.Error
	}

	var sb strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	out := &Response{Content: Text{Value: sb.String()}, StopReason: response.StopReason}
	if response.Usage != nil {
		out.Usage = NewUsage(response.Usage.InputTokens, response.Usage.OutputTokens)
	}
	return out, nil
}
