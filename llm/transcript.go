package llm

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/providers"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/utils"
)

// TranscriptEntry is one recorded exchange.
type TranscriptEntry struct {
	Time        time.Time `json:"time"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Prompt      string    `json:"prompt"`
	Temperature any       `json:"temperature,omitempty"`
	Schema      bool      `json:"schema,omitempty"`
	Response    string    `json:"response,omitempty"`
	Error       string    `json:"error,omitempty"`
	Duration    string    `json:"duration"`
}

// TranscriptLLM writes every prompt and reply of the wrapped LLM to w as
// JSON Lines. Writes are serialized so concurrent samples stay one per line.
type TranscriptLLM struct {
	LLM
	mu     sync.Mutex
	enc    *json.Encoder
	logger utils.Logger
	now    func() time.Time
}

func NewTranscriptLLM(base LLM, w io.Writer) *TranscriptLLM {
	logger := base.GetLogger()
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &TranscriptLLM{LLM: base, enc: json.NewEncoder(w), logger: logger, now: time.Now}
}

func (t *TranscriptLLM) Generate(ctx context.Context, prompt *Prompt, opts ...GenerateOption) (string, error) {
	start := t.now()
	reply, err := t.LLM.Generate(ctx, prompt, opts...)
	t.record(start, prompt, opts, false, reply, err)
	return reply, err
}

func (t *TranscriptLLM) GenerateWithSchema(ctx context.Context, prompt *Prompt, schema any, opts ...GenerateOption) (string, error) {
	start := t.now()
	reply, err := t.LLM.GenerateWithSchema(ctx, prompt, schema, opts...)
	t.record(start, prompt, opts, true, reply, err)
	return reply, err
}

func (t *TranscriptLLM) record(start time.Time, prompt *Prompt, opts []GenerateOption, schema bool, reply string, err error) {
	gc := newGenerateConfig(opts)
	entry := TranscriptEntry{
		Time:        start.UTC(),
		Provider:    t.GetProvider(),
		Model:       t.GetModel(),
		System:      prompt.SystemPrompt,
		Prompt:      prompt.String(),
		Temperature: gc.options[providers.OptionTemperature],
		Schema:      schema,
		Response:    reply,
		Duration:    t.now().Sub(start).Round(time.Millisecond).String(),
	}
	if gc.systemPrompt != "" {
		entry.System = gc.systemPrompt
	}
	if err != nil {
		entry.Error = err.Error()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.enc.Encode(entry); err != nil {
		t.logger.Error("Failed to write transcript entry", "error", err)
	}
}
