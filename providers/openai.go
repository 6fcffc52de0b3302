package providers

import (
	"encoding/json"
	"fmt"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider speaks the OpenAI chat completions API.
type OpenAIProvider struct {
	base
}

func NewOpenAIProvider(apiKey, model string, extraHeaders map[string]string) Provider {
	return &OpenAIProvider{base: newBase(apiKey, model, openAIEndpoint, extraHeaders)}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) SupportsJSONSchema() bool { return true }

func (p *OpenAIProvider) Headers() map[string]string {
	return p.headers(map[string]string{"Authorization": "Bearer " + p.apiKey})
}

type openAIRequest struct {
	Model          string        `json:"model"`
	Messages       []Message     `json:"messages"`
	Temperature    *float64      `json:"temperature,omitempty"`
	MaxTokens      *int          `json:"max_tokens,omitempty"`
	Seed           *int          `json:"seed,omitempty"`
	ResponseFormat *openAIFormat `json:"response_format,omitempty"`
}

type openAIFormat struct {
	Type       string            `json:"type"`
	JSONSchema *openAIJSONSchema `json:"json_schema,omitempty"`
}

type openAIJSONSchema struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
}

func (p *OpenAIProvider) PrepareRequest(req *Request, options map[string]any) ([]byte, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	opts := p.merged(options)

	body := openAIRequest{
		Model:       p.model,
		Temperature: floatOption(opts, OptionTemperature),
		MaxTokens:   intOption(opts, OptionMaxTokens),
		Seed:        intOption(opts, OptionSeed),
	}
	if req.SystemPrompt != "" {
		body.Messages = append(body.Messages, Message{Role: RoleSystem, Content: req.SystemPrompt})
	}
	body.Messages = append(body.Messages, req.Messages...)
	if len(req.ResponseSchema) > 0 {
		body.ResponseFormat = &openAIFormat{
			Type:       "json_schema",
			JSONSchema: &openAIJSONSchema{Name: "response", Schema: req.ResponseSchema},
		}
	}

	reqJSON, err := json.Marshal(body)
	if err != nil {
		p.logger.Error("Failed to marshal request", "error", err)
		return nil, err
	}
	p.logger.Debug("Request prepared", "provider", p.Name(), "messages", len(body.Messages))
	return reqJSON, nil
}

func (p *OpenAIProvider) ParseResponse(body []byte) (*Response, error) {
	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage *struct {
			PromptTokens     int64 `json:"prompt_tokens"`
			CompletionTokens int64 `json:"completion_tokens"`
		} `json:"usage"`
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode openai response: %w", err)
	}
	if response.Error != nil {
		return nil, response.Error
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	out := &Response{
		Content:    Text{Value: response.Choices[0].Message.Content},
		StopReason: response.Choices[0].FinishReason,
	}
	if response.Usage != nil {
		out.Usage = NewUsage(response.Usage.PromptTokens, response.Usage.CompletionTokens)
	}
	return out, nil
}

// apiError is the error envelope OpenAI-compatible and Anthropic APIs return.
type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Type == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func floatOption(opts map[string]any, key string) *float64 {
	switch v := opts[key].(type) {
	case float64:
		return &v
	case float32:
		f := float64(v)
		return &f
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

func intOption(opts map[string]any, key string) *int {
	switch v := opts[key].(type) {
	case int:
		return &v
	case int64:
		i := int(v)
		return &i
	case float64:
		i := int(v)
		return &i
	}
	return nil
}
