package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/utils"
)

func (m *mockLLM) GenerateWithSchema(ctx context.Context, prompt *Prompt, schema any, opts ...GenerateOption) (string, error) {
	args := m.Called(ctx, prompt, schema)
	return args.String(0), args.Error(1)
}

func (m *mockLLM) GetProvider() string { return "openai" }
func (m *mockLLM) GetModel() string { return "gpt-4o-mini" }
func (m *mockLLM) GetLogger() utils.Logger { return nil }

// syncBuffer is a bytes.Buffer safe for the concurrent writes under test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func decodeEntries(t *testing.T, s string) []TranscriptEntry {
	t.Helper()
	var entries []TranscriptEntry
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		var e TranscriptEntry
		require.NoError(t, json.Unmarshal([]byte(line), &e), line)
		entries = append(entries, e)
	}
	return entries
}

func TestTranscriptRecordsExchanges(t *testing.T) {
	base := &mockLLM{}
	base.On("Generate", mock.Anything, mock.Anything).Return("HIGH", nil).Once()
	base.On("GenerateWithSchema", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("boom")).Once()

	var out syncBuffer
	l := NewTranscriptLLM(base, &out)

	prompt := NewPrompt("Classify the ticket", WithSystemPrompt("You are a triage bot."))
	reply, err := l.Generate(context.Background(), prompt, WithTemperature(0.7))
	require.NoError(t, err)
	assert.Equal(t, "HIGH", reply)

	_, err = l.GenerateWithSchema(context.Background(), NewPrompt("Extract"), struct{}{})
	assert.EqualError(t, err, "boom")

	entries := decodeEntries(t, out.buf.String())
	require.Len(t, entries, 2)

	assert.Equal(t, "openai", entries[0].Provider)
	assert.Equal(t, "gpt-4o-mini", entries[0].Model)
	assert.Equal(t, "You are a triage bot.", entries[0].System)
	assert.Equal(t, "Classify the ticket", entries[0].Prompt)
	assert.Equal(t, 0.7, entries[0].Temperature)
	assert.Equal(t, "HIGH", entries[0].Response)
	assert.False(t, entries[0].Schema)

	assert.True(t, entries[1].Schema)
	assert.Equal(t, "boom", entries[1].Error)
	assert.Nil(t, entries[1].Temperature)
	base.AssertExpectations(t)
}

func TestTranscriptSystemInstructionOverride(t *testing.T) {
	base := &mockLLM{}
	base.On("Generate", mock.Anything, mock.Anything).Return("ok", nil)

	var out syncBuffer
	l := NewTranscriptLLM(base, &out)
	_, err := l.Generate(context.Background(), NewPrompt("hi", WithSystemPrompt("a")), WithSystemInstruction("b"))
	require.NoError(t, err)

	entries := decodeEntries(t, out.buf.String())
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].System)
}

func TestTranscriptConcurrentWritesStayOnePerLine(t *testing.T) {
	base := &mockLLM{}
	base.On("Generate", mock.Anything, mock.Anything).Return("sample", nil)

	var out syncBuffer
	l := NewTranscriptLLM(base, &out)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Generate(context.Background(), NewPrompt("same prompt"))
		}()
	}
	wg.Wait()

	assert.Len(t, decodeEntries(t, out.buf.String()), 10)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestTranscriptWriteFailureIsLogged(t *testing.T) {
	base := &mockLLM{}
	base.On("Generate", mock.Anything, mock.Anything).Return("ok", nil)

	logger := utils.NewMockLogger()
	logger.On("Error", "Failed to write transcript entry", mock.Anything).Once()

	l := NewTranscriptLLM(base, failingWriter{})
	l.logger = logger

	reply, err := l.Generate(context.Background(), NewPrompt("hi"))
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	logger.AssertExpectations(t)
}
