package techniques

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/llm"
)

// Reasoning is a chain-of-thought reply split into its numbered steps and
// the final answer.
type Reasoning struct {
	Steps  []string
	Answer string
	Raw    string
}

// CoTExample is a worked scenario shown before the question.
type CoTExample struct {
	Scenario  string
	Reasoning []string
	Answer    string
}

const answerCue = "Finish with a line of the form \"Answer: <your answer>\"."

// ChainOfThought asks for numbered reasoning steps before the answer. With
// examples it becomes few-shot chain-of-thought.
func ChainOfThought(ctx context.Context, l llm.LLM, question string, examples []CoTExample, opts ...llm.GenerateOption) (Reasoning, error) {
	var sb strings.Builder
	for i, ex := range examples {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("Scenario: ")
		sb.WriteString(ex.Scenario)
		sb.WriteString("\nReasoning:")
		for j, step := range ex.Reasoning {
			sb.WriteString("\n")
			sb.WriteString(strconv.Itoa(j + 1))
			sb.WriteString(". ")
			sb.WriteString(step)
		}
		sb.WriteString("\nAnswer: ")
		sb.WriteString(ex.Answer)
	}

	opts = withDefaultTemperature(0.2, opts)
	promptOpts := []llm.PromptOption{
		llm.WithDirectives("Reason through the problem as a numbered list of steps.", answerCue),
	}
	if sb.Len() > 0 {
		promptOpts = append(promptOpts, llm.WithContext(sb.String()))
	}
	reply, err := l.Generate(ctx, llm.NewPrompt(question, promptOpts...), opts...)
	if err != nil {
		return Reasoning{}, err
	}
	return ParseReasoning(reply), nil
}

// ZeroShotCoT appends the "Let's think step by step" cue and nothing else.
func ZeroShotCoT(ctx context.Context, l llm.LLM, question string, opts ...llm.GenerateOption) (Reasoning, error) {
	opts = withDefaultTemperature(0.2, opts)
	prompt := llm.NewPrompt(heredoc.Docf(`
		%s

		%s
		Let's think step by step:`, strings.TrimSpace(question), answerCue))
	reply, err := l.Generate(ctx, prompt, opts...)
	if err != nil {
		return Reasoning{}, err
	}
	return ParseReasoning(reply), nil
}

var (
	stepLine   = regexp.MustCompile(`^\s*(?:(?:Step\s+)?\d+[.):]|[-*])\s+(.+)$`)
	answerLine = regexp.MustCompile(`(?i)^\s*\**(?:final\s+)?answer\**\s*:\**\s*(.*)$`)
)

// ParseReasoning collects numbered or bulleted lines as steps and takes the
// last "Answer:" line as the answer. Without one, the last non-empty line is
// the answer.
func ParseReasoning(reply string) Reasoning {
	r := Reasoning{Raw: reply}
	var last string
	for _, line := range strings.Split(reply, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		last = strings.TrimSpace(line)
		if m := answerLine.FindStringSubmatch(line); m != nil {
			r.Answer = strings.TrimSpace(m[1])
			continue
		}
		if m := stepLine.FindStringSubmatch(line); m != nil {
			r.Steps = append(r.Steps, strings.TrimSpace(m[1]))
		}
	}
	if r.Answer == "" {
		r.Answer = last
	}
	return r
}
