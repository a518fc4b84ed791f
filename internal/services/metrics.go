// Package services – pipeline metrics.
//
// Domain-level Prometheus collectors for the triage pipeline. HTTP-level
// metrics live in the middleware package; the counters here track what the
// pipeline actually did, independent of transport.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// suggestionsPersisted counts suggestion rows written, by provenance
	// ("ai" or "rule").
	suggestionsPersisted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_suggestions_persisted_total",
			Help: "Total number of suggestions persisted, by provenance.",
		},
		[]string{"provenance"},
	)

	// suggestionsDiscarded counts resolver runs whose result was dropped by
	// the monotonicity / zero-confidence guard.
	suggestionsDiscarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_suggestions_discarded_total",
			Help: "Resolver results discarded by the confidence guard.",
		},
	)

	// classifierFailures counts LLM classification calls that degraded to
	// the unknown/zero-confidence default.
	classifierFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_classifier_failures_total",
			Help: "LLM classification failures degraded to the safe default.",
		},
	)

	// threadsIngested / messagesIngested count rows created during bulk
	// ingestion (reused rows from idempotent re-ingestion are not counted).
	threadsIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_threads_ingested_total",
			Help: "New thread rows created by bulk ingestion.",
		},
	)
	messagesIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_messages_ingested_total",
			Help: "New message rows created by bulk ingestion.",
		},
	)

	// draftsSent counts successful draft→sent transitions.
	draftsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_drafts_sent_total",
			Help: "Drafts transitioned from draft to sent.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		suggestionsPersisted,
		suggestionsDiscarded,
		classifierFailures,
		threadsIngested,
		messagesIngested,
		draftsSent,
	)
}
