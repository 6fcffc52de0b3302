package techniques

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const totReply = `Let me explore.

**PATH 1: Standard replacement**
Solution: Ship new mice in 5-7 days.
Cost: $0

PATH 2 - Expedited replacement
Solution: Next-day shipping.
Cost: $35

### PATH 3: Refund plus credit
Solution: Refund ~$90 and add a $20 credit.

EVALUATION:
Path 2 meets the deadline within budget.

**FINAL DECISION:** Path 2, because the deadline is tomorrow.`

func TestParseExploration(t *testing.T) {
	exp := ParseExploration(totReply)
	require.Len(t, exp.Branches, 3)
	assert.Equal(t, Branch{Number: 1, Title: "Standard replacement", Body: "Solution: Ship new mice in 5-7 days.\nCost: $0"}, exp.Branches[0])
	assert.Equal(t, "Expedited replacement", exp.Branches[1].Title)
	assert.Equal(t, 3, exp.Branches[2].Number)
	assert.Equal(t, "Refund plus credit", exp.Branches[2].Title)
	assert.Equal(t, "Path 2 meets the deadline within budget.", exp.Evaluation)
	assert.Equal(t, "Path 2, because the deadline is tomorrow.", exp.Decision)
}

func TestTreeOfThoughts(t *testing.T) {
	m := &mockLLM{}
	m.On("Generate", promptContaining("explore 3 different solution paths", "Both mice defective"), 0.8).Return(totReply, nil)

	exp, err := TreeOfThoughts(context.Background(), m, "Both mice defective; deadline tomorrow.", 3)
	require.NoError(t, err)
	assert.Len(t, exp.Branches, 3)

	_, err = TreeOfThoughts(context.Background(), m, "x", 1)
	assert.Error(t, err)
}

func TestTreeOfThoughtsUnparsable(t *testing.T) {
	m := &mockLLM{}
	m.On("Generate", mock.Anything, 0.8).Return("Just do the expedited one.", nil)

	exp, err := TreeOfThoughts(context.Background(), m, "x", 2)
	assert.Error(t, err)
	assert.Equal(t, "Just do the expedited one.", exp.Raw)
}
