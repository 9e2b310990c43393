// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SignalsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signals_scored_total",
			Help: "Total number of signals scored, by urgency tier and validity",
		},
		[]string{"tier", "valid"},
	)

	SignalScoringFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_scoring_failed_total",
			Help: "Total number of signals that failed scoring",
		},
		[]string{"error_code"},
	)

	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "scoring_duration_seconds",
			Help: "Duration of per-signal scoring in seconds",
		},
		[]string{"stage"},
	)

	ClassifierCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_calls_total",
			Help: "External classifier calls by outcome (merged, timeout, error)",
		},
		[]string{"outcome"},
	)

	FingerprintCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fingerprint_cache_hits_total",
			Help: "Cache hits for derived fingerprint and match results",
		},
		[]string{"kind"},
	)

	FingerprintCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fingerprint_cache_misses_total",
			Help: "Cache misses for derived fingerprint and match results",
		},
		[]string{"kind"},
	)

	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_events_total",
			Help: "Feedback events applied to learned weights, by action",
		},
		[]string{"action"},
	)

	BreakoutsDetected = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "breakouts_detected",
			Help: "Breakout videos detected in the latest competitor scan",
		},
		[]string{"competitor_tier"},
	)
)
