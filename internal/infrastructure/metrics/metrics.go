package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Runs
	RunStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiinfra_run_status_changes_total",
			Help: "Number of run status transitions",
		},
		[]string{"from", "to"},
	)
	RunDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aiinfra_run_duration_seconds",
			Help:    "Histogram of run durations in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s..512s
		},
	)

	// LLM & intent resolution
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiinfra_llm_requests_total",
			Help: "Number of LLM requests by model",
		},
		[]string{"model"},
	)
	ResolveAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiinfra_resolve_attempts_total",
			Help: "Intent resolution attempts by outcome",
		},
		[]string{"outcome"}, // outcome: no_json|parse_error|parsed
	)
	ExtractionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aiinfra_extraction_failures_total",
			Help: "Resolutions that exhausted the retry budget",
		},
	)

	// Validation
	ValidationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiinfra_validation_runs_total",
			Help: "Number of validation runs by validator type and result",
		},
		[]string{"validator", "result"}, // validator: static|terraform, result: pass|fail
	)
	ValidationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aiinfra_validation_duration_seconds",
			Help:    "Duration of validation runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"validator"},
	)

	// Publish
	PublishResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiinfra_publish_results_total",
			Help: "Publish outcomes",
		},
		[]string{"result"}, // result: pushed|nothing_to_commit|failed
	)

	// Errors
	Errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiinfra_errors_total",
			Help: "Errors encountered in components",
		},
		[]string{"component", "type"},
	)
)

func init() {
	prometheus.MustRegister(
		// Runs
		RunStatusChanges,
		RunDurationSeconds,
		// LLM / intent
		LLMRequests,
		ResolveAttempts,
		ExtractionFailures,
		// Validation
		ValidationRuns,
		ValidationDurationSeconds,
		// Publish
		PublishResults,
		// Errors
		Errors,
	)
}

// WriteTextfile dumps every registered metric to path in the node
// exporter textfile format. A one-shot CLI cannot be scraped.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// Runs
func IncRunStatusChange(from, to string) {
	RunStatusChanges.WithLabelValues(from, to).Inc()
}

func ObserveRunDuration(d time.Duration) {
	RunDurationSeconds.Observe(d.Seconds())
}

// LLM
func IncLLMRequest(model string) {
	LLMRequests.WithLabelValues(model).Inc()
}

func IncResolveAttempt(outcome string) {
	ResolveAttempts.WithLabelValues(outcome).Inc()
}

func IncExtractionFailure() {
	ExtractionFailures.Inc()
}

// Validation
func IncValidationRun(validator, result string) {
	ValidationRuns.WithLabelValues(validator, result).Inc()
}

func ObserveValidationDuration(validator string, d time.Duration) {
	ValidationDurationSeconds.WithLabelValues(validator).Observe(d.Seconds())
}

// Publish
func IncPublishResult(result string) {
	PublishResults.WithLabelValues(result).Inc()
}

// Errors
func IncError(component, typ string) {
	Errors.WithLabelValues(component, typ).Inc()
}
