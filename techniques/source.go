// Package techniques implements the prompting techniques on top of an llm.LLM:
// zero-, one- and few-shot prompting, chain-of-thought, personas,
// self-consistency voting, ReAct tool use, tree-of-thoughts, prompt chains,
// structured output and meta-prompting.
package techniques

import (
	"context"
	"fmt"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/consensus"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/llm"
)

// Source adapts l to the consensus sampler. Every generation failure,
// including cancellation, is reported as consensus.ErrSourceUnavailable with
// the cause attached.
func Source(l llm.LLM) consensus.Source {
	return consensus.SourceFunc(func(ctx context.Context, prompt string, temperature float64) (string, error) {
		out, err := l.Generate(ctx, llm.NewPrompt(prompt), llm.WithTemperature(temperature))
		if err != nil {
			return "", fmt.Errorf("%w: %w", consensus.ErrSourceUnavailable, err)
		}
		return out, nil
	})
}
