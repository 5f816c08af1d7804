// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

// Package observability provides Prometheus metrics for the query service:
// request counts, stream duration, and tile/worker throughput.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "seismic"
	querySubsystem   = "query"
)

// Metrics holds the query service's Prometheus instruments. Build one with
// NewMetrics at startup and share it across handlers.
type Metrics struct {
	// RequestsTotal counts requests by endpoint (stream, get, status) and
	// outcome (success, pending, working, finished, not_found, error).
	RequestsTotal *prometheus.CounterVec

	// StreamDurationSeconds measures how long a /result/:pid/stream
	// connection stays open, labeled by outcome.
	StreamDurationSeconds *prometheus.HistogramVec

	// ActiveStreams tracks open streaming connections.
	ActiveStreams prometheus.Gauge

	// TilesDeliveredTotal counts result tiles written to callers.
	TilesDeliveredTotal prometheus.Counter

	// WorkerErrorsTotal counts "error" entries surfaced on a pid's stream.
	WorkerErrorsTotal prometheus.Counter
}

// NewMetrics registers and returns a fresh Metrics instance against reg.
// Pass prometheus.DefaultRegisterer in production, a fresh
// prometheus.NewRegistry() in tests that want isolation.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: querySubsystem,
				Name:      "requests_total",
				Help:      "Total result-broker requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		StreamDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: querySubsystem,
				Name:      "stream_duration_seconds",
				Help:      "Duration of /result/:pid/stream connections",
				Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"status"},
		),

		ActiveStreams: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: querySubsystem,
				Name:      "active_streams",
				Help:      "Number of currently open result streams",
			},
		),

		TilesDeliveredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: querySubsystem,
				Name:      "tiles_delivered_total",
				Help:      "Total result tiles delivered to callers",
			},
		),

		WorkerErrorsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: querySubsystem,
				Name:      "worker_errors_total",
				Help:      "Total worker failures surfaced on a result stream",
			},
		),
	}
}
