package llm

import (
	"bytes"
	"fmt"
	"text/template"
)

// PromptTemplate is a named text/template that renders into a Prompt.
type PromptTemplate struct {
	Name        string
	Description string
	Template    string
	Options     []PromptOption

	parsed *template.Template
}

type PromptTemplateOption func(*PromptTemplate)

func NewPromptTemplate(name, description, tmpl string, opts ...PromptTemplateOption) *PromptTemplate {
	pt := &PromptTemplate{
		Name:        name,
		Description: description,
		Template:    tmpl,
	}
	for _, opt := range opts {
		opt(pt)
	}
	return pt
}

// WithPromptOptions attaches options applied to every rendered prompt.
func WithPromptOptions(options ...PromptOption) PromptTemplateOption {
	return func(pt *PromptTemplate) {
		pt.Options = append(pt.Options, options...)
	}
}

// Parse compiles the template once; Execute calls it lazily.
func (pt *PromptTemplate) Parse() error {
	if pt.parsed != nil {
		return nil
	}
	tmpl, err := template.New(pt.Name).Option("missingkey=error").Parse(pt.Template)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", pt.Name, err)
	}
	pt.parsed = tmpl
	return nil
}

// Execute renders the template with data and applies the template's options
// followed by extra.
func (pt *PromptTemplate) Execute(data any, extra ...PromptOption) (*Prompt, error) {
	if err := pt.Parse(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pt.parsed.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", pt.Name, err)
	}

	prompt := NewPrompt(buf.String(), pt.Options...)
	prompt.Apply(extra...)
	return prompt, nil
}
