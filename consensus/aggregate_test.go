package consensus

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var priorities = Labels("CRITICAL", "HIGH", "MEDIUM", "LOW")

func repeat(text string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = text
	}
	return out
}

func TestAggregatePriorityMajority(t *testing.T) {
	samples := append(
		repeat("Given the deadline tomorrow this is HIGH priority.", 3),
		repeat("Priority: medium, the customer is polite.", 2)...,
	)

	res, err := Aggregate(samples, priorities, 5)
	require.NoError(t, err)

	assert.Equal(t, Label("HIGH"), res.Label)
	assert.Equal(t, 3, res.Votes)
	assert.Equal(t, 5, res.SampleCount)
	assert.Equal(t, 5, res.Extracted)
	assert.InDelta(t, 0.6, res.Confidence, 1e-9)

	want := []LabelCount{{"CRITICAL", 0}, {"HIGH", 3}, {"MEDIUM", 2}, {"LOW", 0}}
	if diff := cmp.Diff(want, res.Breakdown); diff != "" {
		t.Errorf("breakdown mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateInconclusiveWhenNothingMatches(t *testing.T) {
	// Seven requested, three lost upstream, and none of the four that came
	// back names a known priority.
	samples := repeat("YES, absolutely, go ahead.", 4)

	_, err := Aggregate(samples, priorities, 7)
	assert.ErrorIs(t, err, ErrInconclusive)
}

func TestAggregateDecision(t *testing.T) {
	samples := append(
		repeat("Loyalty matters more than $35.\nDECISION: YES", 4),
		repeat("Policy precedent wins.\nDECISION: NO", 3)...,
	)

	res, err := Aggregate(samples, Labels("YES", "NO"), 7)
	require.NoError(t, err)

	assert.Equal(t, Label("YES"), res.Label)
	assert.Equal(t, 4, res.Votes)
	assert.InDelta(t, 4.0/7.0, res.Confidence, 1e-9)
}

func TestAggregateTieGoesToEarliestLabel(t *testing.T) {
	samples := []string{"pick A", "B it is", "A again", "definitely B"}

	res, err := Aggregate(samples, Labels("A", "B"), 4)
	require.NoError(t, err)
	assert.Equal(t, Label("A"), res.Label)
	assert.Equal(t, 2, res.Votes)
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)

	// Reversing the caller order reverses the winner.
	res, err = Aggregate(samples, Labels("B", "A"), 4)
	require.NoError(t, err)
	assert.Equal(t, Label("B"), res.Label)
}

func TestAggregateLabelOrderIsExtractionPriority(t *testing.T) {
	sample := "Not merely HIGH, this is CRITICAL for the business."

	res, err := Aggregate([]string{sample}, priorities, 1)
	require.NoError(t, err)
	assert.Equal(t, Label("CRITICAL"), res.Label)

	res, err = Aggregate([]string{sample}, Labels("HIGH", "CRITICAL"), 1)
	require.NoError(t, err)
	assert.Equal(t, Label("HIGH"), res.Label)
}

func TestAggregateIsCaseInsensitive(t *testing.T) {
	res, err := Aggregate([]string{"priority: low"}, priorities, 1)
	require.NoError(t, err)
	assert.Equal(t, Label("LOW"), res.Label)
}

func TestAggregateMissingSamplesLowerConfidence(t *testing.T) {
	samples := repeat("HIGH", 3)

	res, err := Aggregate(samples, priorities, 6)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Votes)
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)
}

func TestAggregateUnmatchedSamplesCountInDenominator(t *testing.T) {
	samples := []string{"HIGH", "no idea", "HIGH", "???"}

	res, err := Aggregate(samples, priorities, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Extracted)
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)
}

func TestAggregateInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name        string
		samples     []string
		labels      []Label
		sampleCount int
	}{
		{"no labels", []string{"HIGH"}, nil, 1},
		{"zero sample count", []string{"HIGH"}, priorities, 0},
		{"negative sample count", nil, priorities, -3},
		{"more samples than requested", repeat("HIGH", 3), priorities, 2},
		{"empty label", []string{"HIGH"}, Labels("HIGH", " "), 1},
		{"duplicate label", []string{"HIGH"}, Labels("HIGH", "high"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Aggregate(tt.samples, tt.labels, tt.sampleCount)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.False(t, errors.Is(err, ErrInconclusive))
		})
	}
}

func TestAggregateIgnoresLabelsInventedByMatcher(t *testing.T) {
	rogue := MatcherFunc(func(string, []Label) (Label, bool) { return "URGENT", true })

	_, err := Aggregate([]string{"anything"}, priorities, 1, WithMatcher(rogue))
	assert.ErrorIs(t, err, ErrInconclusive)
}

func TestAggregateProperties(t *testing.T) {
	words := []string{"CRITICAL", "HIGH", "MEDIUM", "LOW", "unsure", "HIGH or LOW"}

	// Walk a deterministic family of sample sets.
	for seed := 0; seed < 200; seed++ {
		n := seed%7 + 1
		samples := make([]string, n)
		for i := range samples {
			samples[i] = words[(seed*31+i*17)%len(words)]
		}
		sampleCount := n + seed%3

		t.Run(fmt.Sprintf("seed-%d", seed), func(t *testing.T) {
			res, err := Aggregate(samples, priorities, sampleCount)
			if errors.Is(err, ErrInconclusive) {
				return
			}
			require.NoError(t, err)

			assert.Contains(t, priorities, res.Label)
			assert.Greater(t, res.Confidence, 0.0)
			assert.LessOrEqual(t, res.Confidence, 1.0)

			again, err := Aggregate(samples, priorities, sampleCount)
			require.NoError(t, err)
			assert.Equal(t, res, again)

			if len(samples) < sampleCount {
				more := append(append([]string(nil), samples...), strings.ToLower(string(res.Label)))
				grown, err := Aggregate(more, priorities, sampleCount)
				require.NoError(t, err)
				assert.Equal(t, res.Label, grown.Label)
				assert.GreaterOrEqual(t, grown.Votes, res.Votes)
				assert.GreaterOrEqual(t, grown.Confidence, res.Confidence)
			}
		})
	}
}

func TestResultString(t *testing.T) {
	res := Result{Label: "YES", Votes: 4, SampleCount: 7, Confidence: 4.0 / 7.0}
	assert.Equal(t, "YES (4/7 votes, 57% confidence)", res.String())
}
