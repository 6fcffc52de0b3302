package consensus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/internal/metrics"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/utils"
)

// Source produces one free-text response per prompt and temperature.
type Source interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, prompt string, temperature float64) (string, error)

func (f SourceFunc) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	return f(ctx, prompt, temperature)
}

// Round is what one sampling pass produced.
type Round struct {
	ID        string
	Samples   []string
	Requested int
	Failed    int
}

// Sampler issues independent requests for the same prompt concurrently.
type Sampler struct {
	source      Source
	concurrency int
	timeout     time.Duration
	logger      utils.Logger
	metrics     bool
}

type SamplerOption func(*Sampler)

// WithConcurrency bounds the number of in-flight requests.
func WithConcurrency(n int) SamplerOption {
	return func(s *Sampler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithSampleTimeout bounds a whole round. Samples still outstanding when it
// expires are cancelled and left out.
func WithSampleTimeout(d time.Duration) SamplerOption {
	return func(s *Sampler) {
		s.timeout = d
	}
}

func WithLogger(logger utils.Logger) SamplerOption {
	return func(s *Sampler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics toggles Prometheus recording for rounds and samples.
func WithMetrics(enabled bool) SamplerOption {
	return func(s *Sampler) {
		s.metrics = enabled
	}
}

func NewSampler(source Source, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		source:      source,
		concurrency: 4,
		logger:      utils.NewNopLogger(),
		metrics:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample requests k responses to prompt. Failed requests are dropped and
// counted; the round never fails because of them. Samples keep request order.
// If ctx itself is cancelled the partial round is returned with ctx.Err().
func (s *Sampler) Sample(ctx context.Context, prompt string, temperature float64, k int) (Round, error) {
	round := Round{ID: uuid.NewString(), Requested: k}
	if k <= 0 {
		return round, fmt.Errorf("%w: sample count must be positive, got %d", ErrInvalidConfiguration, k)
	}
	if s.source == nil {
		return round, fmt.Errorf("%w: no completion source", ErrInvalidConfiguration)
	}

	start := time.Now()
	roundCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		roundCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		mu    sync.Mutex
		slots = make([]*string, k)
	)
	g, gCtx := errgroup.WithContext(roundCtx)
	g.SetLimit(s.concurrency)

	s.logger.Debug("Sampling round started", "round", round.ID, "samples", k, "temperature", temperature)
	launched := 0
	for i := 0; i < k; i++ {
		if gCtx.Err() != nil {
			break
		}
		launched++
		g.Go(func() error {
			text, err := s.source.Generate(gCtx, prompt, temperature)
			if err != nil {
				// Per-sample failures are not group errors; they must not
				// cancel the siblings.
				s.logger.Warn("Sample failed", "round", round.ID, "index", i, "error", err)
				s.record(sampleStatus(gCtx, err))
				return nil
			}
			mu.Lock()
			slots[i] = &text
			mu.Unlock()
			s.record(metrics.StatusOK)
			return nil
		})
	}
	_ = g.Wait()
	// Requests the deadline stopped before launch count as cancelled too.
	s.recordN(metrics.StatusCancelled, k-launched)

	for _, slot := range slots {
		if slot != nil {
			round.Samples = append(round.Samples, *slot)
		}
	}
	round.Failed = k - len(round.Samples)

	if s.metrics {
		metrics.RoundDuration.Observe(time.Since(start).Seconds())
	}
	s.logger.Info("Sampling round finished", "round", round.ID, "received", len(round.Samples), "failed", round.Failed)

	if err := ctx.Err(); err != nil {
		return round, err
	}
	return round, nil
}

func (s *Sampler) record(status string) {
	s.recordN(status, 1)
}

func (s *Sampler) recordN(status string, n int) {
	if s.metrics && n > 0 {
		metrics.SamplesTotal.WithLabelValues(status).Add(float64(n))
	}
}

func sampleStatus(ctx context.Context, err error) string {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return metrics.StatusCancelled
	}
	return metrics.StatusFailed
}

// Vote samples k responses and aggregates them against labels, keeping k as
// the confidence denominator whatever number of samples came back.
func Vote(ctx context.Context, s *Sampler, prompt string, temperature float64, labels []Label, k int, opts ...Option) (Result, Round, error) {
	if err := checkConfiguration(0, labels, k); err != nil {
		return Result{}, Round{Requested: k}, err
	}
	round, err := s.Sample(ctx, prompt, temperature, k)
	if err != nil {
		return Result{}, round, err
	}
	res, err := Aggregate(round.Samples, labels, k, opts...)
	return res, round, err
}
