// Package prometheus provides Prometheus metrics for synthesis, conversion
// and playback sessions.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ttswrapper"

var (
	// conversionAttemptsTotal counts conversion strategy executions.
	conversionAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversion_attempts_total",
			Help:      "Total number of conversion strategy attempts",
		},
		[]string{"strategy", "status"}, // status: success, error
	)

	// conversionDuration is a histogram of strategy execution time.
	conversionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Duration of conversion strategy attempts in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"strategy"},
	)

	// synthesisDuration is a histogram of synthesizer call time.
	synthesisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_duration_seconds",
			Help:      "Duration of synthesizer calls in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "status"},
	)

	// sessionsActive is a gauge of sessions between start and end.
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of currently active playback sessions",
		},
	)

	// sessionsTotal counts finished sessions by outcome.
	sessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of playback sessions by outcome",
		},
		[]string{"outcome"}, // outcome: ended, failed, stopped
	)

	// boundariesTotal counts delivered word boundary events.
	boundariesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boundaries_total",
			Help:      "Total number of word boundary events delivered",
		},
	)

	// audioSeconds accumulates the length of audio played to completion.
	audioSeconds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_seconds",
			Help:      "Total seconds of audio played to completion",
		},
	)

	// allMetrics is a list of all metrics for registration.
	allMetrics = []prometheus.Collector{
		conversionAttemptsTotal,
		conversionDuration,
		synthesisDuration,
		sessionsActive,
		sessionsTotal,
		boundariesTotal,
		audioSeconds,
	}
)

// RecordConversionAttempt records one conversion strategy execution.
func RecordConversionAttempt(strategy, status string, durationSeconds float64) {
	conversionDuration.WithLabelValues(strategy).Observe(durationSeconds)
	conversionAttemptsTotal.WithLabelValues(strategy, status).Inc()
}

// RecordSynthesis records a synthesizer call.
func RecordSynthesis(provider, status string, durationSeconds float64) {
	synthesisDuration.WithLabelValues(provider, status).Observe(durationSeconds)
}

// RecordSessionStart records a session start.
func RecordSessionStart() {
	sessionsActive.Inc()
}

// RecordSessionEnd records a session leaving the active set.
func RecordSessionEnd(outcome string) {
	sessionsActive.Dec()
	sessionsTotal.WithLabelValues(outcome).Inc()
}

// RecordBoundary records a delivered word boundary.
func RecordBoundary() {
	boundariesTotal.Inc()
}

// RecordAudioSeconds adds played audio time.
func RecordAudioSeconds(seconds float64) {
	if seconds > 0 {
		audioSeconds.Add(seconds)
	}
}
