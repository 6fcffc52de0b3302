package techniques

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/config"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/consensus"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/llm"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/utils"
)

// SelfConsistency samples the same prompt several times at a non-zero
// temperature and takes the majority answer.
type SelfConsistency struct {
	Samples     int
	Temperature float64
	Labels      []consensus.Label
	// Matcher defaults to consensus.SubstringMatcher.
	Matcher     consensus.Matcher
	Concurrency int
	// Timeout bounds the whole round. Zero means no deadline.
	Timeout time.Duration
	Logger  utils.Logger
}

// NewSelfConsistency takes sampling defaults from cfg.
func NewSelfConsistency(cfg config.ConsensusConfig, labels ...string) *SelfConsistency {
	return &SelfConsistency{
		Samples:     cfg.Samples,
		Temperature: cfg.Temperature,
		Labels:      consensus.Labels(labels...),
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.Timeout,
	}
}

func (sc *SelfConsistency) sampler(l llm.LLM) *consensus.Sampler {
	opts := []consensus.SamplerOption{consensus.WithSampleTimeout(sc.Timeout)}
	if sc.Concurrency > 0 {
		opts = append(opts, consensus.WithConcurrency(sc.Concurrency))
	}
	logger := sc.Logger
	if logger == nil {
		logger = l.GetLogger()
	}
	if logger != nil {
		opts = append(opts, consensus.WithLogger(logger))
	}
	return consensus.NewSampler(Source(l), opts...)
}

// Decide votes over sc.Labels. Confidence is measured against Samples, so
// failed requests count against it.
func (sc *SelfConsistency) Decide(ctx context.Context, l llm.LLM, prompt string) (consensus.Result, consensus.Round, error) {
	var opts []consensus.Option
	if sc.Matcher != nil {
		opts = append(opts, consensus.WithMatcher(sc.Matcher))
	}
	return consensus.Vote(ctx, sc.sampler(l), prompt, sc.Temperature, sc.Labels, sc.Samples, opts...)
}

// ReasoningPaths returns n independent completions of prompt, in request
// order, leaving out the ones that failed.
func (sc *SelfConsistency) ReasoningPaths(ctx context.Context, l llm.LLM, prompt string, n int, temperature float64) ([]string, error) {
	round, err := sc.sampler(l).Sample(ctx, prompt, temperature, n)
	return round.Samples, err
}

// Extractor pulls a normalized answer out of a free-form sample.
type Extractor func(sample string) (string, bool)

// DecideOpen votes when the answers are not known up front, such as a
// computed amount. Labels are the distinct extracted answers in the order
// they first appear, so ties go to the answer seen first.
func (sc *SelfConsistency) DecideOpen(ctx context.Context, l llm.LLM, prompt string, extract Extractor) (consensus.Result, consensus.Round, error) {
	if sc.Samples <= 0 {
		return consensus.Result{}, consensus.Round{}, fmt.Errorf("%w: sample count must be positive", consensus.ErrInvalidConfiguration)
	}
	round, err := sc.sampler(l).Sample(ctx, prompt, sc.Temperature, sc.Samples)
	if err != nil {
		return consensus.Result{}, round, err
	}

	var labels []consensus.Label
	seen := make(map[string]bool)
	for _, s := range round.Samples {
		if v, ok := extract(s); ok && !seen[strings.ToUpper(v)] {
			seen[strings.ToUpper(v)] = true
			labels = append(labels, consensus.Label(v))
		}
	}
	if len(labels) == 0 {
		return consensus.Result{SampleCount: sc.Samples}, round, consensus.ErrInconclusive
	}

	exact := consensus.MatcherFunc(func(sample string, labels []consensus.Label) (consensus.Label, bool) {
		v, ok := extract(sample)
		if !ok {
			return "", false
		}
		for _, label := range labels {
			if strings.EqualFold(string(label), v) {
				return label, true
			}
		}
		return "", false
	})
	result, err := consensus.Aggregate(round.Samples, labels, sc.Samples, consensus.WithMatcher(exact))
	return result, round, err
}

var dollarAmount = regexp.MustCompile(`\$\s?([0-9][0-9,]*(?:\.[0-9]+)?)`)

// DollarAmount extracts the last dollar figure in a sample, formatted to
// cents, e.g. "$1,340.07" becomes "1340.07".
func DollarAmount(sample string) (string, bool) {
	matches := dollarAmount.FindAllStringSubmatch(sample, -1)
	if len(matches) == 0 {
		return "", false
	}
	raw := strings.ReplaceAll(matches[len(matches)-1][1], ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(v, 'f', 2, 64), true
}
