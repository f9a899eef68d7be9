package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "debugtutor_checks_total",
		Help: "Total number of static checks performed, by language.",
	}, []string{"language"})

	CheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "debugtutor_check_seconds",
		Help:    "Time spent statically checking a submission.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "debugtutor_diagnostics_total",
		Help: "Total number of diagnostics emitted, by language and severity.",
	}, []string{"language", "severity"})

	CompletionRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "debugtutor_completion_requests_total",
		Help: "Total number of completion backend requests, by action and outcome.",
	}, []string{"action", "outcome"})

	CompletionRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "debugtutor_completion_retries_total",
		Help: "Total number of completion request retries, by reason.",
	}, []string{"reason"})

	StreamFragmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "debugtutor_stream_fragments_total",
		Help: "Total number of streamed response fragments delivered to clients.",
	})
)

// ObserveCheck records one static check with its diagnostic counts.
func ObserveCheck(language string, seconds float64, errors, warnings int) {
	ChecksTotal.WithLabelValues(language).Inc()
	CheckDuration.WithLabelValues(language).Observe(seconds)
	if errors > 0 {
		DiagnosticsTotal.WithLabelValues(language, "error").Add(float64(errors))
	}
	if warnings > 0 {
		DiagnosticsTotal.WithLabelValues(language, "warning").Add(float64(warnings))
	}
}
