// internal/agents/detect-duplicates/handler.go
package detectduplicates

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"provider-validation/internal/common/logger"
	"provider-validation/internal/common/metrics"
	"provider-validation/internal/dedupe"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "detect-duplicates"

// ReportCache stores the rendered report for the dashboard. Satisfied by
// database.RedisClient.
type ReportCache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type Handler struct {
	config   *Config
	detector *dedupe.Detector
	cache    ReportCache
	logger   logger.Logger
}

// NewHandler creates the duplicate detection handler. cache may be nil when
// no Redis instance is configured; the report is then only returned inline.
func NewHandler(config *Config, cache ReportCache, log logger.Logger) *Handler {
	if config.CacheKey == "" {
		config.CacheKey = "dedupe:report:latest"
	}
	return &Handler{
		config:   config,
		detector: dedupe.NewDetector(),
		cache:    cache,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "DUPLICATE_DETECTION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]dedupe.Record, 0, len(input.Providers))
	for _, p := range input.Providers {
		records = append(records, p.ToRecord())
	}

	report := h.detector.GenerateReport(records)

	for confidence, count := range report.ByConfidence {
		metrics.DuplicatePairsFound.WithLabelValues(confidence).Add(float64(count))
	}

	h.logger.Info("duplicate scan complete", map[string]interface{}{
		"providersAnalyzed": report.Summary.TotalProvidersAnalyzed,
		"duplicatesFound":   report.Summary.PotentialDuplicatesFound,
		"mergeCandidates":   report.Summary.MergeCandidates,
	})

	h.cacheReport(ctx, report)

	return &Output{Report: *report}, nil
}

// cacheReport best-effort stores the report for dashboard reads. A cache
// failure never fails the job.
func (h *Handler) cacheReport(ctx context.Context, report *dedupe.Report) {
	if h.cache == nil {
		return
	}

	payload, err := json.Marshal(report)
	if err != nil {
		h.logger.Warn("failed to marshal dedupe report for cache", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if err := h.cache.Set(ctx, h.config.CacheKey, payload, h.config.CacheTTL); err != nil {
		h.logger.Warn("failed to cache dedupe report", map[string]interface{}{
			"key":   h.config.CacheKey,
			"error": err.Error(),
		})
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
