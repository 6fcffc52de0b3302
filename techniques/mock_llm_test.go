package techniques

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/llm"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/providers"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/utils"
)

// mockLLM records the prompt and the per-call temperature (nil when unset).
type mockLLM struct {
	mock.Mock
}

func temperatureOf(opts []llm.GenerateOption) any {
	return llm.Options(opts...)[providers.OptionTemperature]
}

func (m *mockLLM) Generate(ctx context.Context, prompt *llm.Prompt, opts ...llm.GenerateOption) (string, error) {
	args := m.Called(prompt, temperatureOf(opts))
	return args.String(0), args.Error(1)
}

func (m *mockLLM) GenerateWithSchema(ctx context.Context, prompt *llm.Prompt, schema any, opts ...llm.GenerateOption) (string, error) {
	args := m.Called(prompt, schema)
	return args.String(0), args.Error(1)
}

func (m *mockLLM) GetProvider() string { return "mock" }

func (m *mockLLM) GetModel() string { return "mock-model" }

func (m *mockLLM) GetLogger() utils.Logger { return utils.NewNopLogger() }

func (m *mockLLM) SetLogLevel(level utils.LogLevel) {}

func promptContaining(parts ...string) any {
	return mock.MatchedBy(func(p *llm.Prompt) bool {
		text := p.SystemPrompt + "\n" + p.String()
		for _, part := range parts {
			if !strings.Contains(text, part) {
				return false
			}
		}
		return true
	})
}
