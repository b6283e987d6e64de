// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	SynthesisFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synthesis_fallbacks_total",
			Help: "Total number of units of work that fell back to deterministic templates",
		},
		[]string{"unit"},
	)

	SectionsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_sections_generated_total",
			Help: "Total number of page sections populated",
		},
		[]string{"page_type", "grounded"},
	)

	SynthesisTokensUsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "synthesis_tokens_used_total",
			Help: "Total tokens reported by the synthesis service",
		},
	)
)
