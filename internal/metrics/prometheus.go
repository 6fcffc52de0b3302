// Package metrics holds the Prometheus collectors shared by the completion
// client and the consensus sampler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LLMRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptlab_llm_requests_total",
		Help: "Total completion requests by provider and outcome",
	}, []string{"provider", "status"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "promptlab_llm_request_duration_seconds",
		Help:    "Completion request duration",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"provider"})

	LLMRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptlab_llm_retries_total",
		Help: "Completion attempts that were retried",
	}, []string{"provider"})

	SamplesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptlab_consensus_samples_total",
		Help: "Samples requested by self-consistency rounds, by outcome",
	}, []string{"status"})

	RoundDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "promptlab_consensus_round_duration_seconds",
		Help:    "Wall time of one sampling round",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	})
)

// Status labels used with SamplesTotal and LLMRequestsTotal.
const (
	StatusOK        = "ok"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)
