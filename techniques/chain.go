package techniques

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/llm"
)

// ChainStep is one stage of a prompt chain. Template is a text/template that sees
// {{.Input}} and the outputs of earlier steps as {{index .Steps "name"}}.
type ChainStep struct {
	Name        string
	Template    string
	Temperature float64
}

type StepResult struct {
	Name   string
	Prompt string
	Output string
}

// Chain feeds each step's output into the prompts of later steps.
type Chain struct {
	Steps []ChainStep
}

type chainData struct {
	Input string
	Steps map[string]string
}

// Run executes the steps in order. On failure it returns the results of the
// steps that completed.
func (c *Chain) Run(ctx context.Context, l llm.LLM, input string) ([]StepResult, error) {
	templates, err := c.compile()
	if err != nil {
		return nil, err
	}

	data := chainData{Input: input, Steps: make(map[string]string, len(c.Steps))}
	results := make([]StepResult, 0, len(c.Steps))
	for i, step := range c.Steps {
		prompt, err := templates[i].Execute(data)
		if err != nil {
			return results, fmt.Errorf("step %s: %w", step.Name, err)
		}
		out, err := l.Generate(ctx, prompt, llm.WithTemperature(step.Temperature))
		if err != nil {
			return results, fmt.Errorf("step %s: %w", step.Name, err)
		}
		data.Steps[step.Name] = out
		results = append(results, StepResult{Name: step.Name, Prompt: prompt.Input, Output: out})
	}
	return results, nil
}

func (c *Chain) compile() ([]*llm.PromptTemplate, error) {
	if len(c.Steps) == 0 {
		return nil, fmt.Errorf("chain has no steps")
	}
	seen := make(map[string]bool, len(c.Steps))
	templates := make([]*llm.PromptTemplate, len(c.Steps))
	for i, step := range c.Steps {
		if step.Name == "" {
			return nil, fmt.Errorf("step %d has no name", i+1)
		}
		if seen[step.Name] {
			return nil, fmt.Errorf("duplicate step name %s", step.Name)
		}
		seen[step.Name] = true

		pt := llm.NewPromptTemplate(step.Name, "", step.Template)
		if err := pt.Parse(); err != nil {
			return nil, err
		}
		templates[i] = pt
	}
	return templates, nil
}

// EmailTriageChain processes a customer email in four steps: extract the
// facts, classify the issues, plan the resolution and draft the reply.
func EmailTriageChain() *Chain {
	return &Chain{Steps: []ChainStep{
		{
			Name:        "extract",
			Temperature: 0.2,
			Template: heredoc.Doc(`
				Extract key information from this customer email in JSON format:

				Email:
				{{.Input}}

				Extract: customer_name, customer_email, order_id, issues (list),
				urgency_level (low/medium/high/critical),
				sentiment (positive/neutral/negative/angry), deadline (if mentioned).
				Respond with only valid JSON.`),
		},
		{
			Name:        "classify",
			Temperature: 0.2,
			Template: heredoc.Doc(`
				Based on this extracted customer information, classify each issue and assign priority:
				{{index .Steps "extract"}}

				For each issue give the issue type, priority (P0-critical, P1-high, P2-medium, P3-low),
				the department responsible and the estimated resolution time.
				Format as a JSON array.`),
		},
		{
			Name:        "plan",
			Temperature: 0.6,
			Template: heredoc.Doc(`
				Create an action plan to resolve these customer issues.

				Customer info:
				{{index .Steps "extract"}}

				Issues:
				{{index .Steps "classify"}}

				Include immediate actions (within 24 hours), investigation steps,
				the resolution plan, follow-up actions and who owns each step.`),
		},
		{
			Name:        "reply",
			Temperature: 0.7,
			Template: heredoc.Doc(`
				Write a professional, empathetic reply to the customer.

				Customer's original email:
				{{.Input}}

				Issues identified:
				{{index .Steps "classify"}}

				Action plan:
				{{index .Steps "plan"}}

				Acknowledge every concern, explain what we are doing and when,
				and include a direct contact for escalation.`),
		},
	}}
}
