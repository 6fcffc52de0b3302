package techniques

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReasoning(t *testing.T) {
	reply := `Let's work it out.
1. The mice cost 2 x $49.99 = $99.98.
2) The 10% discount takes off $10.00.
Step 3: Shipping is non-refundable.
- So the refund is $99.98 - $10.00.
**Answer:** $89.98`

	r := ParseReasoning(reply)
	assert.Equal(t, []string{
		"The mice cost 2 x $49.99 = $99.98.",
		"The 10% discount takes off $10.00.",
		"Shipping is non-refundable.",
		"So the refund is $99.98 - $10.00.",
	}, r.Steps)
	assert.Equal(t, "$89.98", r.Answer)
	assert.Equal(t, reply, r.Raw)
}

func TestParseReasoningWithoutAnswerLine(t *testing.T) {
	r := ParseReasoning("1. add them\n\nThe total is 42.\n")
	assert.Equal(t, []string{"add them"}, r.Steps)
	assert.Equal(t, "The total is 42.", r.Answer)
}

func TestChainOfThoughtFewShot(t *testing.T) {
	m := &mockLLM{}
	m.On("Generate", promptContaining(
		"Scenario: Laptop bought 35 days ago",
		"1. Check return policy",
		"Answer: Accept the return",
		"numbered list of steps",
		"Should we refund the mice?",
	), 0.2).Return("1. Defect is ours\nAnswer: Yes", nil)

	r, err := ChainOfThought(context.Background(), m, "Should we refund the mice?", []CoTExample{{
		Scenario:  "Laptop bought 35 days ago with a manufacturing defect",
		Reasoning: []string{"Check return policy: 30 days", "Defect is covered by warranty"},
		Answer:    "Accept the return as an exception",
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Defect is ours"}, r.Steps)
	assert.Equal(t, "Yes", r.Answer)
	m.AssertExpectations(t)
}

func TestZeroShotCoT(t *testing.T) {
	m := &mockLLM{}
	m.On("Generate", promptContaining("How much should be refunded?", "Let's think step by step:"), 0.2).
		Return("1. $99.98 gross\n2. minus $10.00\nAnswer: $89.98", nil)

	r, err := ZeroShotCoT(context.Background(), m, "How much should be refunded?")
	require.NoError(t, err)
	assert.Len(t, r.Steps, 2)
	assert.Equal(t, "$89.98", r.Answer)
}
