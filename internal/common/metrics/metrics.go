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

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// VerificationResults counts verification outcomes by the backend that
	// served them and the status field of the result payload.
	VerificationResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_verification_results_total",
			Help: "Total number of subscription verifications by backend and result status",
		},
		[]string{"backend", "status"},
	)

	// VerificationCacheHits counts cache-aside hits, labeled by which cache
	// answered: "routing" for the franchise backend lookup, "result" for a
	// previously cached verification result.
	VerificationCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_verification_cache_hits_total",
			Help: "Total number of verification cache hits by cache layer",
		},
		[]string{"cache"},
	)
)
