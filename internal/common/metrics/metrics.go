// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AgentJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_jobs_completed_total",
			Help: "Total number of jobs completed by agent",
		},
		[]string{"task_type"},
	)

	AgentJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_jobs_failed_total",
			Help: "Total number of jobs failed by agent",
		},
		[]string{"task_type", "error_code"},
	)

	AgentJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "agent_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	ProvidersProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_providers_processed_total",
			Help: "Total number of provider records run through the pipeline",
		},
		[]string{"outcome"},
	)

	DuplicatePairsFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedupe_pairs_found_total",
			Help: "Total number of potential duplicate pairs detected",
		},
		[]string{"confidence"},
	)
)
