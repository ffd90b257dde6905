// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandlerFunc is the agent handler shape: agents complete or fail the
// job themselves through the job client.
type JobHandlerFunc func(client worker.JobClient, job entities.Job)

// AgentWorker is one open Zeebe job worker bound to an agent task type.
type AgentWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// NewWorker opens a job worker for taskType and starts polling.
func NewWorker(
	client zbc.Client,
	taskType string,
	maxJobsActive int,
	timeout time.Duration,
	handler JobHandlerFunc,
	logger *zap.Logger,
) *AgentWorker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()

	logger.Info("agent started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobsActive),
		zap.Duration("timeout", timeout),
	)

	return &AgentWorker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

// Close stops polling and waits for in-flight jobs.
func (w *AgentWorker) Close() {
	w.logger.Info("stopping agent", zap.String("taskType", w.taskType))
	w.worker.Close()
}
