// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package postgres

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SaveDuration is the histogram for save pipeline runs.
// Use RegisterMetrics to register this with a Prometheus registry.
var SaveDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "duskhaven_player_save_duration_seconds",
		Help:    "Player save pipeline duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"status"},
)

// LoadDuration is the histogram for load pipeline runs, snapshot fetch
// included. Use RegisterMetrics to register this with a Prometheus registry.
var LoadDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "duskhaven_player_load_duration_seconds",
		Help:    "Player load pipeline duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"status"},
)

// SaveFailures is the counter for sub-saver failures by facet.
// Use RegisterMetrics to register this with a Prometheus registry.
var SaveFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "duskhaven_player_save_failures_total",
		Help: "Total number of sub-saver failures by facet",
	},
	[]string{"facet"},
)

// RegisterMetrics registers player persistence metrics with the given
// Prometheus registry. Call once at startup.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(SaveDuration)
	reg.MustRegister(LoadDuration)
	reg.MustRegister(SaveFailures)
}

// RecordSaveDuration records one save pipeline run.
func RecordSaveDuration(duration time.Duration, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	SaveDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordLoadDuration records one load pipeline run.
func RecordLoadDuration(duration time.Duration, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	LoadDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordSaveFailure increments the facet failure counter.
func RecordSaveFailure(facet string) {
	SaveFailures.WithLabelValues(facet).Inc()
}
