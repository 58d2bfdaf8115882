// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package presence

import "github.com/prometheus/client_golang/prometheus"

// PlayersOnline is the gauge mirroring the presence set.
// Use RegisterMetrics to register this with a Prometheus registry.
var PlayersOnline = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "duskhaven_players_online",
		Help: "Number of players currently online",
	},
)

// RegisterMetrics registers presence metrics with the given Prometheus
// registry. Call once at startup.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(PlayersOnline)
}
