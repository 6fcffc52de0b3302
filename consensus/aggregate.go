// Package consensus reduces repeated noisy answers to a categorical question
// into one decision with a confidence score (self-consistency voting), and
// drives the concurrent sampling that produces those answers.
package consensus

import (
	"fmt"
	"strings"
)

// Result is the outcome of one aggregation round.
type Result struct {
	// Label is the winning label, always one of the known labels.
	Label Label
	// Votes is the number of samples that yielded Label.
	Votes int
	// SampleCount is the number of samples requested, the confidence denominator.
	SampleCount int
	// Extracted is the number of samples that yielded any label.
	Extracted int
	// Confidence is Votes / SampleCount.
	Confidence float64
	// Breakdown lists the vote count of every known label in caller order.
	Breakdown []LabelCount
}

// LabelCount is one row of a Result breakdown.
type LabelCount struct {
	Label Label
	Votes int
}

func (r Result) String() string {
	return fmt.Sprintf("%s (%d/%d votes, %.0f%% confidence)", r.Label, r.Votes, r.SampleCount, r.Confidence*100)
}

type aggregateOptions struct {
	matcher Matcher
}

// Option configures Aggregate.
type Option func(*aggregateOptions)

// WithMatcher replaces the default SubstringMatcher.
func WithMatcher(m Matcher) Option {
	return func(o *aggregateOptions) {
		if m != nil {
			o.matcher = m
		}
	}
}

// Aggregate runs a majority vote over samples.
//
// Each sample is reduced to at most one label by the matcher, which scans
// labels in the order supplied; the caller owns that priority order and must
// list a label before any other whose text could appear alongside it (for
// example CRITICAL before HIGH). Samples that match nothing still count in the
// denominator: confidence is votes divided by sampleCount, the number of
// samples requested, so missing or unreadable samples lower confidence.
//
// When two labels share the highest count, the one listed first wins.
//
// Aggregate returns ErrInvalidConfiguration when labels is empty, holds an
// empty or repeated label, when sampleCount is not positive, or when more
// samples than sampleCount are given. It returns ErrInconclusive when no sample
// yields a label. It performs no I/O.
func Aggregate(samples []string, labels []Label, sampleCount int, opts ...Option) (Result, error) {
	if err := checkConfiguration(len(samples), labels, sampleCount); err != nil {
		return Result{}, err
	}

	o := aggregateOptions{matcher: SubstringMatcher{}}
	for _, opt := range opts {
		opt(&o)
	}

	tally := make(map[Label]int, len(labels))
	for _, label := range labels {
		tally[label] = 0
	}
	extracted := 0
	for _, sample := range samples {
		label, ok := o.matcher.Match(sample, labels)
		if !ok {
			continue
		}
		if _, known := tally[label]; !known {
			// A custom matcher invented a label; treat the sample as unmatched.
			continue
		}
		tally[label]++
		extracted++
	}
	if extracted == 0 {
		return Result{}, ErrInconclusive
	}

	res := Result{
		SampleCount: sampleCount,
		Extracted:   extracted,
		Breakdown:   make([]LabelCount, len(labels)),
	}
	for i, label := range labels {
		votes := tally[label]
		res.Breakdown[i] = LabelCount{Label: label, Votes: votes}
		// Strict comparison keeps the earliest label on ties.
		if votes > res.Votes {
			res.Label = label
			res.Votes = votes
		}
	}
	res.Confidence = float64(res.Votes) / float64(sampleCount)
	return res, nil
}

func checkConfiguration(received int, labels []Label, sampleCount int) error {
	if len(labels) == 0 {
		return fmt.Errorf("%w: no known labels", ErrInvalidConfiguration)
	}
	if sampleCount <= 0 {
		return fmt.Errorf("%w: sample count must be positive, got %d", ErrInvalidConfiguration, sampleCount)
	}
	if received > sampleCount {
		return fmt.Errorf("%w: %d samples exceed the %d requested", ErrInvalidConfiguration, received, sampleCount)
	}
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		key := strings.ToUpper(strings.TrimSpace(string(label)))
		if key == "" {
			return fmt.Errorf("%w: empty label", ErrInvalidConfiguration)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidConfiguration, label)
		}
		seen[key] = struct{}{}
	}
	return nil
}
