package consensus

import (
	"fmt"
	"regexp"
	"strings"
)

// Label is one value of a fixed categorical outcome set.
type Label string

// Matcher extracts at most one label from a raw sample. Implementations scan
// labels in the order given and return the first one they recognise.
type Matcher interface {
	Match(sample string, labels []Label) (Label, bool)
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(sample string, labels []Label) (Label, bool)

func (f MatcherFunc) Match(sample string, labels []Label) (Label, bool) {
	return f(sample, labels)
}

// SubstringMatcher picks the first label whose text appears anywhere in the
// sample, ignoring case. A label that is a substring of another's context will
// win if it is listed first, so order labels most-specific-first.
type SubstringMatcher struct{}

func (SubstringMatcher) Match(sample string, labels []Label) (Label, bool) {
	return firstContained(strings.ToUpper(sample), labels)
}

// TrailingLineMatcher only looks at the last non-empty line of the sample,
// where prompts usually ask the model to put its verdict.
type TrailingLineMatcher struct{}

func (TrailingLineMatcher) Match(sample string, labels []Label) (Label, bool) {
	lines := strings.Split(sample, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		return firstContained(strings.ToUpper(line), labels)
	}
	return "", false
}

func firstContained(upper string, labels []Label) (Label, bool) {
	for _, label := range labels {
		if strings.Contains(upper, strings.ToUpper(string(label))) {
			return label, true
		}
	}
	return "", false
}

// RegexMatcher takes the last match of a pattern with one capture group and
// compares the captured text to each label for equality, ignoring case.
type RegexMatcher struct {
	re *regexp.Regexp
}

// NewRegexMatcher compiles pattern, which must contain exactly one capture group.
func NewRegexMatcher(pattern string) (*RegexMatcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: compile matcher pattern: %v", ErrInvalidConfiguration, err)
	}
	if re.NumSubexp() != 1 {
		return nil, fmt.Errorf("%w: matcher pattern %q must have exactly one capture group, has %d",
			ErrInvalidConfiguration, pattern, re.NumSubexp())
	}
	return &RegexMatcher{re: re}, nil
}

// MustRegexMatcher is NewRegexMatcher for patterns known at compile time.
func MustRegexMatcher(pattern string) *RegexMatcher {
	m, err := NewRegexMatcher(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *RegexMatcher) Match(sample string, labels []Label) (Label, bool) {
	matches := m.re.FindAllStringSubmatch(sample, -1)
	if len(matches) == 0 {
		return "", false
	}
	captured := strings.TrimSpace(matches[len(matches)-1][1])
	for _, label := range labels {
		if strings.EqualFold(captured, string(label)) {
			return label, true
		}
	}
	return "", false
}

// Labels converts plain strings to a label slice, keeping order.
func Labels(values ...string) []Label {
	labels := make([]Label, len(values))
	for i, v := range values {
		labels[i] = Label(v)
	}
	return labels
}
