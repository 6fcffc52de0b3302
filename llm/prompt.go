package llm

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Prompt is a structured prompt. String renders the user turn; SystemPrompt
// and Messages travel as separate conversation entries.
type Prompt struct {
	Input        string
	SystemPrompt string
	Context      string
	Directives   []string
	Examples     []Example `validate:"dive"`
	Output       string
	MaxLength    int             `validate:"gte=0"`
	Messages     []PromptMessage `validate:"dive"`
}

// Example is one worked input/output pair for one- and few-shot prompting.
type Example struct {
	Input  string `json:"input" yaml:"input" validate:"required"`
	Output string `json:"output" yaml:"output" validate:"required"`
}

// PromptMessage is a prior conversation turn.
type PromptMessage struct {
	Role    string `validate:"required,oneof=user assistant system"`
	Content string
}

type PromptOption func(*Prompt)

func NewPrompt(input string, opts ...PromptOption) *Prompt {
	p := &Prompt{Input: input}
	p.Apply(opts...)
	return p
}

func (p *Prompt) Apply(opts ...PromptOption) {
	for _, opt := range opts {
		opt(p)
	}
}

// WithSystemPrompt sets the system (developer) instruction, used for personas.
func WithSystemPrompt(system string) PromptOption {
	return func(p *Prompt) {
		p.SystemPrompt = system
	}
}

func WithContext(context string) PromptOption {
	return func(p *Prompt) {
		p.Context = context
	}
}

func WithDirectives(directives ...string) PromptOption {
	return func(p *Prompt) {
		p.Directives = append(p.Directives, directives...)
	}
}

func WithExamples(examples ...Example) PromptOption {
	return func(p *Prompt) {
		p.Examples = append(p.Examples, examples...)
	}
}

func WithOutput(output string) PromptOption {
	return func(p *Prompt) {
		p.Output = output
	}
}

// WithMaxLength asks the model to stay under n words.
func WithMaxLength(n int) PromptOption {
	return func(p *Prompt) {
		p.MaxLength = n
	}
}

func WithMessages(messages ...PromptMessage) PromptOption {
	return func(p *Prompt) {
		p.Messages = append(p.Messages, messages...)
	}
}

var promptValidator = validator.New()

// Validate rejects prompts with neither input nor history, and malformed parts.
func (p *Prompt) Validate() error {
	if strings.TrimSpace(p.Input) == "" && len(p.Messages) == 0 {
		return fmt.Errorf("prompt has no input")
	}
	return promptValidator.Struct(p)
}

// String renders context, directives, examples, input, length limit and
// output cue, in that order, separated by blank lines.
func (p *Prompt) String() string {
	var sections []string

	if p.Context != "" {
		sections = append(sections, "Context:\n"+p.Context)
	}

	if len(p.Directives) > 0 {
		var sb strings.Builder
		sb.WriteString("Directives:")
		for _, d := range p.Directives {
			sb.WriteString("\n- ")
			sb.WriteString(d)
		}
		sections = append(sections, sb.String())
	}

	if len(p.Examples) > 0 {
		var sb strings.Builder
		sb.WriteString("Examples:")
		for i, ex := range p.Examples {
			fmt.Fprintf(&sb, "\n\nExample %d:\nInput: %s\nOutput: %s", i+1, ex.Input, ex.Output)
		}
		sections = append(sections, sb.String())
	}

	if p.Input != "" {
		sections = append(sections, p.Input)
	}

	if p.MaxLength > 0 {
		sections = append(sections, fmt.Sprintf("Please limit your response to approximately %d words.", p.MaxLength))
	}

	if p.Output != "" {
		sections = append(sections, p.Output)
	}

	return strings.Join(sections, "\n\n")
}
