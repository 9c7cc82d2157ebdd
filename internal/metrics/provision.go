package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsCompleted counts provisioning runs by terminal status.
	RunsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provision_runs_completed_total",
		Help: "Provisioning runs reaching a terminal status",
	}, []string{"status"})

	// StageFailures counts stage failures by stage and error kind.
	StageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provision_stage_failures_total",
		Help: "Stage failures during provisioning runs",
	}, []string{"stage", "error_kind"})

	// GenerationWaits observes how long the generation stage waited before
	// the expected device count was reached or the deadline expired.
	GenerationWaits = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "provision_generation_wait_seconds",
		Help:    "Time spent waiting for device generation to complete",
		Buckets: prometheus.ExponentialBuckets(5, 2, 10),
	})
)
