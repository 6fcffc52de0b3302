package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/utils"
)

// Tokenizer counts the tokens in a piece of text.
type Tokenizer interface {
	Count(text string) int
}

// TokenizerFunc adapts a function to the Tokenizer interface.
type TokenizerFunc func(text string) int

func (f TokenizerFunc) Count(text string) int { return f(text) }

type tiktokenTokenizer struct {
	encoding *tiktoken.Tiktoken
}

func (t tiktokenTokenizer) Count(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

// NewTiktokenTokenizer returns the BPE tokenizer for model, falling back to
// the gpt-4o encoding for models tiktoken does not know.
func NewTiktokenTokenizer(model string, logger utils.Logger) (Tokenizer, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Warn("Failed to get encoding for model, defaulting to gpt-4o", "model", model, "error", err)
		encoding, err = tiktoken.EncodingForModel("gpt-4o")
		if err != nil {
			return nil, fmt.Errorf("failed to get default encoding: %w", err)
		}
	}
	return tiktokenTokenizer{encoding: encoding}, nil
}

// WordTokenizer approximates tokens by whitespace-separated words. It needs
// no encoding files.
var WordTokenizer = TokenizerFunc(func(text string) int {
	return len(strings.Fields(text))
})

// MemoryMessage is one stored turn with its token count.
type MemoryMessage struct {
	Role    string
	Content string
	Tokens  int
}

// Memory keeps conversation history within a token budget, dropping the
// oldest turns first. The newest turn is always kept. Safe for concurrent use.
type Memory struct {
	messages    []MemoryMessage
	mutex       sync.Mutex
	totalTokens int
	maxTokens   int
	tokenizer   Tokenizer
	logger      utils.Logger
}

func NewMemory(maxTokens int, tokenizer Tokenizer, logger utils.Logger) (*Memory, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("memory token budget must be positive, got %d", maxTokens)
	}
	if tokenizer == nil {
		return nil, fmt.Errorf("memory needs a tokenizer")
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Memory{
		maxTokens: maxTokens,
		tokenizer: tokenizer,
		logger:    logger,
	}, nil
}

func (m *Memory) Add(role, content string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	tokens := m.tokenizer.Count(content)
	m.messages = append(m.messages, MemoryMessage{Role: role, Content: content, Tokens: tokens})
	m.totalTokens += tokens

	m.truncate()
	m.logger.Debug("Added message to memory", "role", role, "tokens", tokens, "total_tokens", m.totalTokens)
}

func (m *Memory) truncate() {
	for m.totalTokens > m.maxTokens && len(m.messages) > 1 {
		removed := m.messages[0]
		m.messages = m.messages[1:]
		m.totalTokens -= removed.Tokens
		m.logger.Debug("Removed message from memory", "role", removed.Role, "tokens", removed.Tokens, "total_tokens", m.totalTokens)
	}
}

func (m *Memory) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.messages = nil
	m.totalTokens = 0
	m.logger.Debug("Cleared memory")
}

// Messages returns a copy of the stored turns, oldest first.
func (m *Memory) Messages() []MemoryMessage {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]MemoryMessage(nil), m.messages...)
}

func (m *Memory) TotalTokens() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.totalTokens
}

// LLMWithMemory wraps an LLM so each Generate call sees the stored history
// and records its own prompt and reply.
type LLMWithMemory struct {
	LLM
	memory *Memory
}

func NewLLMWithMemory(base LLM, memory *Memory) *LLMWithMemory {
	return &LLMWithMemory{LLM: base, memory: memory}
}

func (l *LLMWithMemory) Generate(ctx context.Context, prompt *Prompt, opts ...GenerateOption) (string, error) {
	withHistory := *prompt
	withHistory.Messages = nil
	for _, msg := range l.memory.Messages() {
		withHistory.Messages = append(withHistory.Messages, PromptMessage{Role: msg.Role, Content: msg.Content})
	}
	withHistory.Messages = append(withHistory.Messages, prompt.Messages...)

	response, err := l.LLM.Generate(ctx, &withHistory, opts...)
	if err != nil {
		return "", err
	}

	l.memory.Add("user", prompt.String())
	l.memory.Add("assistant", response)
	return response, nil
}

func (l *LLMWithMemory) Memory() *Memory { return l.memory }

func (l *LLMWithMemory) ClearMemory() { l.memory.Clear() }
