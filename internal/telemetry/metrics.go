// Package telemetry wires ingestion events into logs, Prometheus metrics
// and OpenTelemetry traces.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the ingestion service.
//
// Metrics:
//   - ingest_runs_total{outcome} - ingestion runs by outcome (committed, failed)
//   - ingest_stage_transitions_total{stage} - stages reached
//   - ingest_stage_failures_total{stage} - stages that were not reached
//   - ingest_run_duration_seconds{outcome} - wall time of a run
//   - http_requests_total{method,route,status} - served requests
//   - http_request_duration_seconds{method,route} - request latency
type Metrics struct {
	RunsTotal             *prometheus.CounterVec
	StageTransitionsTotal *prometheus.CounterVec
	StageFailuresTotal    *prometheus.CounterVec
	RunDuration           *prometheus.HistogramVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_runs_total",
				Help: "Total number of ingestion runs by outcome",
			},
			[]string{"outcome"},
		),
		StageTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_stage_transitions_total",
				Help: "Total number of ingestion stages reached",
			},
			[]string{"stage"},
		),
		StageFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_stage_failures_total",
				Help: "Total number of ingestion runs that failed to reach a stage",
			},
			[]string{"stage"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ingest_run_duration_seconds",
				Help:    "Duration of ingestion runs in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"outcome"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}
