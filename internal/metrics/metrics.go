// Package metrics instruments the generation and edit pipeline with
// Prometheus collectors, grounded on the counters the teacher's job
// scheduler exposes for its own worker pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GenerateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sacristy",
		Name:      "generate_duration_seconds",
		Help:      "Duration of one generate() call.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	GenerateConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sacristy",
		Name:      "generate_conflicts_total",
		Help:      "Total unfilled slots produced across all generate() calls.",
	})

	GenerateRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sacristy",
		Name:      "generate_runs_total",
		Help:      "Total generate() calls, by outcome.",
	}, []string{"outcome"})

	EditsAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sacristy",
		Name:      "edits_applied_total",
		Help:      "Total schedule edits applied, by kind and outcome.",
	}, []string{"kind", "outcome"})

	SchedulesPublishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sacristy",
		Name:      "schedules_published_total",
		Help:      "Total schedules transitioned to PUBLISHED.",
	})

	ArchiveSweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sacristy",
		Name:      "archive_sweep_duration_seconds",
		Help:      "Time taken for one archive housekeeping sweep.",
		Buckets:   prometheus.DefBuckets,
	})

	ArchiveSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sacristy",
		Name:      "archive_swept_total",
		Help:      "Total PUBLISHED schedules moved to ARCHIVED by the housekeeping sweep.",
	})
)

// Register registers every collector with the default Prometheus registry.
// Safe to call once at startup.
func Register() {
	prometheus.MustRegister(
		GenerateDuration,
		GenerateConflictsTotal,
		GenerateRunsTotal,
		EditsAppliedTotal,
		SchedulesPublishedTotal,
		ArchiveSweepDuration,
		ArchiveSweptTotal,
	)
}

// NewServer returns an HTTP server exposing /metrics on addr.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux}
}
