package backfill

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backfill_sessions_processed_total",
			Help: "Completed sessions extracted and replayed",
		},
	)

	sessionsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backfill_sessions_skipped_total",
			Help: "Sessions excluded from replay because of malformed payloads",
		},
	)

	matchesReplayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backfill_matches_replayed_total",
			Help: "Matches applied to the rating engine and accumulator",
		},
	)

	matchesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backfill_matches_skipped_total",
			Help: "Matches rejected by the rating engine during replay",
		},
	)

	scopesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backfill_scopes_failed_total",
			Help: "Derived-document scopes whose rewrite failed",
		},
		[]string{"kind"},
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "backfill_run_duration_seconds",
			Help:    "Wall-clock duration of a full backfill run",
			Buckets: prometheus.DefBuckets,
		},
	)
)
