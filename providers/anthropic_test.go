package providers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicPrepareRequest(t *testing.T) {
	p := NewAnthropicProvider("sk-ant-test", "claude-3-5-haiku-latest", nil)
	req := &Request{
		SystemPrompt: "You are empathetic.",
		Messages: []Message{
			{Role: RoleSystem, Content: "Keep it short."},
			{Role: RoleUser, Content: "My mouse is broken."},
		},
	}

	body, err := p.PrepareRequest(req, map[string]any{OptionTemperature: 0.8})
	require.NoError(t, err)

	var got anthropicRequest
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "You are empathetic.\n\nKeep it short.", got.System)
	assert.Equal(t, anthropicDefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, RoleUser, got.Messages[0].Role)
	require.NotNil(t, got.Temperature)
	assert.Equal(t, 0.8, *got.Temperature)

	headers := p.Headers()
	assert.Equal(t, "sk-ant-test", headers["x-api-key"])
	assert.Equal(t, anthropicVersion, headers["anthropic-version"])
	assert.False(t, p.SupportsJSONSchema())
}

func TestAnthropicParseResponse(t *testing.T) {
	p := NewAnthropicProvider("sk-ant-test", "claude", nil)

	resp, err := p.ParseResponse([]byte(`{
		"content": [{"type": "text", "text": "DECISION: "}, {"type": "text", "text": "YES"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 10, "output_tokens": 4}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "DECISION: YES", resp.String())
	assert.Equal(t, int64(14), resp.Usage.TotalTokens)

	_, err = p.ParseResponse([]byte(`{"content": []}`))
	assert.Error(t, err)

	_, err = p.ParseResponse([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	assert.EqualError(t, err, "overloaded_error: Overloaded")
}
