package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/config"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/utils"
)

func chatReply(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 3},
	})
	return string(body)
}

func newTestLLM(t *testing.T, handler http.HandlerFunc, opts ...config.ConfigOption) *LLMImpl {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.NewConfig()
	config.ApplyOptions(cfg,
		config.SetEndpoint(server.URL),
		config.SetAPIKey("sk-test"),
		config.SetMaxRetries(2),
		config.SetRetryDelay(time.Millisecond),
	)
	config.ApplyOptions(cfg, opts...)

	l, err := NewLLM(cfg, utils.NewNopLogger(), nil)
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l
}

func TestGenerateSendsRenderedPrompt(t *testing.T) {
	var captured map[string]any
	l := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		fmt.Fprint(w, chatReply("POSITIVE"))
	})

	prompt := NewPrompt("Classify: I love this product!",
		WithSystemPrompt("You are a sentiment classifier."),
		WithDirectives("Answer with one word"),
	)
	got, err := l.Generate(context.Background(), prompt, WithTemperature(0))
	require.NoError(t, err)
	assert.Equal(t, "POSITIVE", got)

	assert.Equal(t, 0.0, captured["temperature"])
	messages := captured["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "You are a sentiment classifier.", messages[0].(map[string]any)["content"])
	assert.Equal(t, prompt.String(), messages[1].(map[string]any)["content"])
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	l := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, chatReply("ok"))
	})

	got, err := l.Generate(context.Background(), NewPrompt("hello"))
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.EqualValues(t, 3, calls.Load())
}

func TestGenerateGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	l := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := l.Generate(context.Background(), NewPrompt("hello"))
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrorTypeRateLimit))
	assert.EqualValues(t, 3, calls.Load())
}

func TestGenerateDoesNotRetryAuthErrors(t *testing.T) {
	var calls atomic.Int32
	l := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := l.Generate(context.Background(), NewPrompt("hello"))
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrorTypeAuthentication))
	assert.EqualValues(t, 1, calls.Load())
}

func TestGenerateDoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	l := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := l.Generate(context.Background(), NewPrompt("hello"))
	var llmErr *LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrorTypeAPI, llmErr.Type)
	assert.Equal(t, http.StatusBadRequest, llmErr.StatusCode)
	assert.EqualValues(t, 1, calls.Load())
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	l := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := l.Generate(context.Background(), NewPrompt("   "))
	assert.True(t, IsErrorType(err, ErrorTypeInvalidInput))
}

func TestGenerateHonoursCancellation(t *testing.T) {
	l := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, config.SetTimeout(time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := l.Generate(ctx, NewPrompt("hello"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerateIsRateLimited(t *testing.T) {
	l := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply("ok"))
	}, config.SetRateLimit(20, 1))

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := l.Generate(context.Background(), NewPrompt("hello"))
		require.NoError(t, err)
	}
	// burst 1 at 20/s: the second and third calls wait ~50ms each
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

type ticket struct {
	Category string `json:"category" validate:"required,oneof=billing technical"`
	Urgent   bool   `json:"urgent"`
}

func TestGenerateWithSchemaNative(t *testing.T) {
	var captured map[string]any
	l := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		fmt.Fprint(w, chatReply("```json\n{\"category\":\"billing\",\"urgent\":true}\n```"))
	})

	got, err := l.GenerateWithSchema(context.Background(), NewPrompt("Charged twice!"), ticket{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"billing","urgent":true}`, got)

	format := captured["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
}

func TestGenerateWithSchemaRetriesInvalidReplies(t *testing.T) {
	var calls atomic.Int32
	l := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			fmt.Fprint(w, chatReply(`{"category":"shipping"}`))
			return
		}
		fmt.Fprint(w, chatReply(`{"category":"technical"}`))
	})

	got, err := l.GenerateWithSchema(context.Background(), NewPrompt("App crashes"), ticket{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"technical"}`, got)
	assert.EqualValues(t, 2, calls.Load())
}

func TestGenerateWithSchemaEmbedsSchemaWhenUnsupported(t *testing.T) {
	var captured map[string]any
	l := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"{\"category\":\"billing\"}"}],"stop_reason":"end_turn"}`)
	}, config.SetProvider("anthropic"), config.SetAPIKey("sk-ant-test"))

	_, err := l.GenerateWithSchema(context.Background(), NewPrompt("Charged twice!"), ticket{})
	require.NoError(t, err)

	messages := captured["messages"].([]any)
	content := messages[len(messages)-1].(map[string]any)["content"].(string)
	assert.Contains(t, content, "Please provide your response in JSON format")
	assert.Contains(t, content, `"category"`)
}

func TestNewLLMUnknownProvider(t *testing.T) {
	cfg := config.NewConfig()
	config.ApplyOptions(cfg, config.SetProvider("nope"))
	_, err := NewLLM(cfg, nil, nil)
	assert.True(t, IsErrorType(err, ErrorTypeProvider))
}
