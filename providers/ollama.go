package providers

import (
	"encoding/json"
	"fmt"
)

const ollamaEndpoint = "http://localhost:11434/api/chat"

// OllamaProvider talks to a local Ollama server. It needs no API key.
type OllamaProvider struct {
	base
}

func NewOllamaProvider(_ string, model string, extraHeaders map[string]string) Provider {
	return &OllamaProvider{base: newBase("", model, ollamaEndpoint, extraHeaders)}
}

func (p *OllamaProvider) Name() string { return "ollama" }

// SupportsJSONSchema is true: the chat endpoint accepts a schema in "format".
func (p *OllamaProvider) SupportsJSONSchema() bool { return true }

func (p *OllamaProvider) Headers() map[string]string {
	return p.headers(nil)
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []Message       `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format,omitempty"`
	Options  map[string]any  `json:"options,omitempty"`
}

func (p *OllamaProvider) PrepareRequest(req *Request, options map[string]any) ([]byte, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	opts := p.merged(options)

	body := ollamaRequest{
		Model:   p.model,
		Format:  req.ResponseSchema,
		Options: make(map[string]any),
	}
	if req.SystemPrompt != "" {
		body.Messages = append(body.Messages, Message{Role: RoleSystem, Content: req.SystemPrompt})
	}
	body.Messages = append(body.Messages, req.Messages...)

	if t := floatOption(opts, OptionTemperature); t != nil {
		body.Options["temperature"] = *t
	}
	if n := intOption(opts, OptionMaxTokens); n != nil {
		body.Options["num_predict"] = *n
	}
	if s := intOption(opts, OptionSeed); s != nil {
		body.Options["seed"] = *s
	}

	reqJSON, err := json.Marshal(body)
	if err != nil {
		p.logger.Error("Failed to marshal request", "error", err)
		return nil, err
	}
	p.logger.Debug("Request prepared", "provider", p.Name(), "messages", len(body.Messages))
	return reqJSON, nil
}

func (p *OllamaProvider) ParseResponse(body []byte) (*Response, error) {
	var response struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		DoneReason      string `json:"done_reason"`
		PromptEvalCount int64  `json:"prompt_eval_count"`
		EvalCount       int64  `json:"eval_count"`
		Error           string `json:"error"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode ollama response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("ollama: %s", response.Error)
	}
	if response.Message.Content == "" {
		return nil, fmt.Errorf("empty response from API")
	}
	return &Response{
		Content:    Text{Value: response.Message.Content},
		StopReason: response.DoneReason,
		Usage:      NewUsage(response.PromptEvalCount, response.EvalCount),
	}, nil
}
