package techniques

import (
	"context"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/llm"
)

// ImprovePrompt asks the model to critique a prompt and rewrite it.
// background describes cases the prompt should handle and may be empty.
func ImprovePrompt(ctx context.Context, l llm.LLM, original, background string, opts ...llm.GenerateOption) (string, error) {
	var promptOpts []llm.PromptOption
	if background = strings.TrimSpace(background); background != "" {
		promptOpts = append(promptOpts, llm.WithContext(background))
	}
	promptOpts = append(promptOpts, llm.WithDirectives(
		"Analyze what is wrong with this prompt",
		"Suggest what elements are missing",
		"Provide an improved version that captures best practices",
		"Explain why the improved version is better",
	))
	input := heredoc.Docf(`
		I have this prompt:
		"%s"`, strings.TrimSpace(original))
	return l.Generate(ctx, llm.NewPrompt(input, promptOpts...), withDefaultTemperature(0.7, opts)...)
}

// SelectStrategy asks which prompting techniques suit a task.
func SelectStrategy(ctx context.Context, l llm.LLM, task string, opts ...llm.GenerateOption) (string, error) {
	input := heredoc.Docf(`
		I need to design a prompt system for this workflow:
		%s

		What prompting strategy should I use? Consider zero-shot, few-shot,
		chain-of-thought, prompt chaining, ReAct, self-consistency and
		structured output.`, strings.TrimSpace(task))
	prompt := llm.NewPrompt(input, llm.WithDirectives(
		"For each relevant technique, explain why it suits the workflow and where to apply it",
		"List potential challenges and expected benefits",
		"Finish with a recommended approach as a step-by-step implementation plan",
	))
	return l.Generate(ctx, prompt, withDefaultTemperature(0.7, opts)...)
}

// GeneratePrompt writes a production-ready prompt from requirements.
func GeneratePrompt(ctx context.Context, l llm.LLM, requirements string, opts ...llm.GenerateOption) (string, error) {
	input := heredoc.Docf(`
		Generate a complete, production-ready prompt based on these requirements:
		%s`, strings.TrimSpace(requirements))
	prompt := llm.NewPrompt(input, llm.WithDirectives(
		"Include the complete prompt, ready to use",
		"Recommend model parameters such as temperature and max tokens",
		"Give an example input and the expected output",
		"List edge cases to test",
	))
	opts = append([]llm.GenerateOption{llm.WithMaxTokens(2000)}, opts...)
	return l.Generate(ctx, prompt, withDefaultTemperature(0.7, opts)...)
}

// DebugPrompt diagnoses a prompt that misbehaves in the ways described by
// symptoms and proposes a fix.
func DebugPrompt(ctx context.Context, l llm.LLM, problematic, symptoms string, opts ...llm.GenerateOption) (string, error) {
	input := heredoc.Docf(`
		I have a prompt that's not working well:
		"%s"

		Problems observed:
		%s`, strings.TrimSpace(problematic), strings.TrimSpace(symptoms))
	prompt := llm.NewPrompt(input, llm.WithDirectives(
		"Identify the root cause of each problem",
		"Provide a fixed version of the prompt",
		"Explain how each change addresses a problem",
	))
	return l.Generate(ctx, prompt, withDefaultTemperature(0.5, opts)...)
}

// withDefaultTemperature puts t first so caller options override it.
func withDefaultTemperature(t float64, opts []llm.GenerateOption) []llm.GenerateOption {
	return append([]llm.GenerateOption{llm.WithTemperature(t)}, opts...)
}
