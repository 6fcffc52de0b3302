package techniques

import (
	"context"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/consensus"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/llm"
)

// InquiryCategories are the support inbox categories used by the demos.
var InquiryCategories = []string{
	"Order Status",
	"Product Question",
	"Technical Support",
	"Complaint",
	"Return/Refund",
}

// ZeroShot sends instruction and input with no examples.
func ZeroShot(ctx context.Context, l llm.LLM, instruction, input string, opts ...llm.GenerateOption) (string, error) {
	prompt := llm.NewPrompt(input, llm.WithDirectives(instruction))
	return l.Generate(ctx, prompt, opts...)
}

// Classify asks for exactly one of categories and maps the reply back onto
// the caller's spelling. A reply that is not exactly a category falls back
// to the first category it mentions.
func Classify(ctx context.Context, l llm.LLM, text string, categories []string) (string, error) {
	if len(categories) == 0 {
		return "", fmt.Errorf("classify: no categories given")
	}

	prompt := llm.NewPrompt(heredoc.Docf(`
		Classify the following text into one of these categories:
		%s

		Text:
		%s`, bulletList(categories), strings.TrimSpace(text)),
		llm.WithOutput("Respond with the category name only.\nClassification:"),
	)
	reply, err := l.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return "", err
	}

	if c, ok := exactCategory(reply, categories); ok {
		return c, nil
	}
	labels := consensus.Labels(categories...)
	if label, ok := (consensus.SubstringMatcher{}).Match(reply, labels); ok {
		return string(label), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, strings.TrimSpace(reply))
}

func exactCategory(reply string, categories []string) (string, bool) {
	cleaned := strings.Trim(strings.TrimSpace(reply), ".\"'`*")
	for _, c := range categories {
		if strings.EqualFold(cleaned, c) {
			return c, true
		}
	}
	return "", false
}

func bulletList(items []string) string {
	var sb strings.Builder
	for i, it := range items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("- ")
		sb.WriteString(it)
	}
	return sb.String()
}
