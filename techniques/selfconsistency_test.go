package techniques

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/config"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/consensus"
)

const decisionPrompt = "Should we approve expedited shipping? End with: DECISION: [YES/NO]"

func TestDecideMajority(t *testing.T) {
	m := &mockLLM{}
	replies := []string{"DECISION: YES", "DECISION: NO", "DECISION: YES", "DECISION: YES", "unclear", "DECISION: NO", "DECISION: YES"}
	for _, r := range replies {
		m.On("Generate", promptContaining(decisionPrompt), 0.8).Return(r, nil).Once()
	}

	sc := &SelfConsistency{
		Samples:     7,
		Temperature: 0.8,
		Labels:      consensus.Labels("YES", "NO"),
		Matcher:     consensus.MustRegexMatcher(`DECISION:\s*(\w+)`),
		Concurrency: 1,
	}
	res, round, err := sc.Decide(context.Background(), m, decisionPrompt)
	require.NoError(t, err)
	assert.Equal(t, consensus.Label("YES"), res.Label)
	assert.Equal(t, 4, res.Votes)
	assert.Equal(t, 7, res.SampleCount)
	assert.Equal(t, 6, res.Extracted)
	assert.InDelta(t, 4.0/7.0, res.Confidence, 1e-9)
	assert.Equal(t, 7, round.Requested)
	assert.Len(t, round.Samples, 7)
	m.AssertNumberOfCalls(t, "Generate", 7)
}

func TestDecideCountsFailuresAgainstConfidence(t *testing.T) {
	m := &mockLLM{}
	m.On("Generate", mock.Anything, 0.7).Return("", errors.New("503")).Twice()
	m.On("Generate", mock.Anything, 0.7).Return("Priority: HIGH", nil)

	sc := NewSelfConsistency(config.ConsensusConfig{Samples: 5, Temperature: 0.7, Concurrency: 1, Timeout: time.Minute},
		"CRITICAL", "HIGH", "MEDIUM", "LOW")
	res, round, err := sc.Decide(context.Background(), m, "Classify this inquiry priority")
	require.NoError(t, err)
	assert.Equal(t, consensus.Label("HIGH"), res.Label)
	assert.Equal(t, 3, res.Votes)
	assert.InDelta(t, 0.6, res.Confidence, 1e-9)
	assert.Equal(t, 2, round.Failed)
}

func TestDecideInconclusive(t *testing.T) {
	m := &mockLLM{}
	m.On("Generate", mock.Anything, mock.Anything).Return("I cannot decide.", nil)

	sc := &SelfConsistency{Samples: 3, Temperature: 0.7, Labels: consensus.Labels("YES", "NO")}
	_, _, err := sc.Decide(context.Background(), m, decisionPrompt)
	assert.ErrorIs(t, err, consensus.ErrInconclusive)
}

func TestDecideInvalidConfiguration(t *testing.T) {
	m := &mockLLM{}
	sc := &SelfConsistency{Samples: 3, Temperature: 0.7}
	_, _, err := sc.Decide(context.Background(), m, decisionPrompt)
	assert.ErrorIs(t, err, consensus.ErrInvalidConfiguration)
	m.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestReasoningPaths(t *testing.T) {
	m := &mockLLM{}
	m.On("Generate", mock.Anything, 0.9).Return("path a", nil).Once()
	m.On("Generate", mock.Anything, 0.9).Return("", errors.New("timeout")).Once()
	m.On("Generate", mock.Anything, 0.9).Return("path c", nil).Once()

	sc := &SelfConsistency{Concurrency: 1}
	paths, err := sc.ReasoningPaths(context.Background(), m, "Calculate the refund", 3, 0.9)
	require.NoError(t, err)
	assert.Equal(t, []string{"path a", "path c"}, paths)
}

func TestDollarAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Refund: $89.98", "89.98", true},
		{"Gross $99.98, minus $10, so the refund is $ 89.98.", "89.98", true},
		{"Total $1,340.07", "1340.07", true},
		{"refund $90", "90.00", true},
		{"no money here", "", false},
	}
	for _, tt := range tests {
		got, ok := DollarAmount(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDecideOpen(t *testing.T) {
	m := &mockLLM{}
	for _, r := range []string{"so $90.00", "refund is $89.98", "I get $89.98", "hmm", "$90"} {
		m.On("Generate", mock.Anything, 0.7).Return(r, nil).Once()
	}

	sc := &SelfConsistency{Samples: 5, Temperature: 0.7, Concurrency: 1}
	res, _, err := sc.DecideOpen(context.Background(), m, "Calculate the refund", DollarAmount)
	require.NoError(t, err)
	// 90.00 and 89.98 tie at two votes; 90.00 was seen first
	assert.Equal(t, consensus.Label("90.00"), res.Label)
	assert.Equal(t, 2, res.Votes)
	assert.Equal(t, 4, res.Extracted)
	assert.InDelta(t, 0.4, res.Confidence, 1e-9)
}

func TestDecideOpenNothingExtracted(t *testing.T) {
	m := &mockLLM{}
	m.On("Generate", mock.Anything, mock.Anything).Return("no figure", nil)

	sc := &SelfConsistency{Samples: 2, Temperature: 0.7}
	_, _, err := sc.DecideOpen(context.Background(), m, "x", DollarAmount)
	assert.ErrorIs(t, err, consensus.ErrInconclusive)

	sc.Samples = 0
	_, _, err = sc.DecideOpen(context.Background(), m, "x", DollarAmount)
	assert.ErrorIs(t, err, consensus.ErrInvalidConfiguration)
}
