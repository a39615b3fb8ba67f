// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"subscription-workers/internal/common/config"
	"subscription-workers/internal/common/metrics"
	"subscription-workers/internal/common/observability"
)

// JobHandler is what every worker package's Handler satisfies. Completion
// and failure are the handler's responsibility; the wrapper only measures.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Worker is one open Zeebe job subscription with Prometheus and OTel
// instrumentation wrapped around the handler.
type Worker struct {
	worker   worker.JobWorker
	taskType string
	logger   *zap.Logger
}

func NewWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler JobHandler, obs *observability.Observability, log *zap.Logger) *Worker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(instrument(taskType, handler, obs)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)

	return &Worker{
		worker:   jobWorker,
		taskType: taskType,
		logger:   log,
	}
}

func instrument(taskType string, handler JobHandler, obs *observability.Observability) func(worker.JobClient, entities.Job) {
	return func(client worker.JobClient, job entities.Job) {
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		start := time.Now()

		defer func() {
			elapsed := time.Since(start)
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
			if obs != nil {
				obs.RecordJobProcessed(context.Background(), taskType)
				obs.RecordJobDuration(context.Background(), taskType, elapsed)
			}
		}()

		handler.Handle(client, job)
	}
}

// Close stops polling for this task type. The shared Zeebe client stays open.
func (w *Worker) Close() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
}
