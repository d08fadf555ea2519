// Package metrics holds the Prometheus collectors shared by the server and worker.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "intake"

var (
	// ItemsIngested counts raw feedback items received.
	// Labels: source_type, result (created, duplicate)
	ItemsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "items_total",
			Help:      "Raw feedback items received, by source type and dedupe result",
		},
		[]string{"source_type", "result"},
	)

	StaleItemsRequeued = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "stale_items_requeued_total",
			Help:      "Items re-enqueued after waiting too long in ready_for_extraction",
		},
	)

	// ExtractionJobs counts extraction job outcomes.
	// Labels: outcome (completed, rejected, failed, requeued, dead_lettered, skipped)
	ExtractionJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "extraction_jobs_total",
			Help:      "Extraction jobs processed, by outcome",
		},
		[]string{"outcome"},
	)

	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "extraction_duration_seconds",
			Help:      "Time to run one raw item through the pipeline",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// GateDecisions counts quality gate outcomes.
	// Labels: decision (pass, reject_word_count, reject_classifier)
	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "gate_decisions_total",
			Help:      "Quality gate decisions",
		},
		[]string{"decision"},
	)

	// CapabilityCalls times embedder and classifier calls.
	// Labels: capability (embedder, classifier, summarizer), result (ok, error, timeout)
	CapabilityCalls = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "capability_call_duration_seconds",
			Help:      "Duration of external model calls",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"capability", "result"},
	)

	MatchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "best_match_score",
			Help:      "Cosine similarity of the best candidate per signal, qualifying or not",
			Buckets:   []float64{0.5, 0.6, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1},
		},
	)

	// SuggestionsCreated counts suggestions written by the builder.
	// Labels: type (merge_post, create_post)
	SuggestionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "suggestions",
			Name:      "created_total",
			Help:      "Suggestions created",
		},
		[]string{"type"},
	)

	// SuggestionsResolved counts accept and dismiss decisions.
	// Labels: type, status (accepted, dismissed)
	SuggestionsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "suggestions",
			Name:      "resolved_total",
			Help:      "Suggestions resolved by a reviewer",
		},
		[]string{"type", "status"},
	)
)

// ObserveCapability records one model call.
func ObserveCapability(capability string, start time.Time, err error, timedOut bool) {
	result := "ok"
	switch {
	case timedOut:
		result = "timeout"
	case err != nil:
		result = "error"
	}
	CapabilityCalls.WithLabelValues(capability, result).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
