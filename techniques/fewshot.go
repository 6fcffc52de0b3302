package techniques

import (
	"context"
	"fmt"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/llm"
)

// FewShot shows the model worked examples before the input. The examples
// fix the output format as much as the answer.
func FewShot(ctx context.Context, l llm.LLM, instruction string, examples []llm.Example, input string, opts ...llm.GenerateOption) (string, error) {
	if len(examples) == 0 {
		return "", fmt.Errorf("few-shot: at least one example is required")
	}
	prompt := llm.NewPrompt("Now respond to this input:\nInput: "+input,
		llm.WithDirectives(instruction),
		llm.WithExamples(examples...),
		llm.WithOutput("Output:"),
	)
	return l.Generate(ctx, prompt, opts...)
}

func OneShot(ctx context.Context, l llm.LLM, instruction string, example llm.Example, input string, opts ...llm.GenerateOption) (string, error) {
	return FewShot(ctx, l, instruction, []llm.Example{example}, input, opts...)
}

// PriorityExamples are labelled support inquiries for few-shot triage.
var PriorityExamples = []llm.Example{
	{
		Input:  "My credit card was charged twice for order #111",
		Output: "Category: Billing Issue\nPriority: HIGH\nReason: Financial impact, requires immediate attention",
	},
	{
		Input:  "What are the dimensions of the wireless mouse?",
		Output: "Category: Product Question\nPriority: LOW\nReason: General information request, no urgency",
	},
	{
		Input:  "My laptop won't turn on after the update",
		Output: "Category: Technical Support\nPriority: HIGH\nReason: Product unusable, immediate assistance needed",
	},
	{
		Input:  "Do you ship to Canada?",
		Output: "Category: Shipping Question\nPriority: LOW\nReason: Pre-purchase inquiry, not time-sensitive",
	},
}
