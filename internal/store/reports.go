// internal/store/reports.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"provider-validation/internal/dedupe"
	"provider-validation/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
)

const (
	dashboardKey    = "dashboard:latest"
	batchKey        = "batch:latest"
	dedupeReportKey = "dedupe:report:latest"

	defaultReportTTL = 24 * time.Hour
)

// ReportCache keeps the latest batch artifacts in Redis for fast
// dashboard reads.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache wraps a Redis client. ttl <= 0 selects the default.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = defaultReportTTL
	}
	return &ReportCache{client: client, ttl: ttl}
}

// SaveDashboard stores the dashboard snapshot.
func (c *ReportCache) SaveDashboard(ctx context.Context, dashboard *models.DashboardData) error {
	payload, err := marshalJSON(dashboard, "dashboard")
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, dashboardKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache dashboard: %w", err)
	}
	return nil
}

// LoadDashboard reads the cached dashboard snapshot. Returns redis.Nil
// wrapped when no snapshot exists.
func (c *ReportCache) LoadDashboard(ctx context.Context) (*models.DashboardData, error) {
	payload, err := c.client.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	var dashboard models.DashboardData
	if err := json.Unmarshal(payload, &dashboard); err != nil {
		return nil, fmt.Errorf("decode dashboard: %w", err)
	}
	return &dashboard, nil
}

// SaveBatch stores the full batch result.
func (c *ReportCache) SaveBatch(ctx context.Context, batch *models.BatchResult) error {
	payload, err := marshalJSON(batch, "batch result")
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, batchKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache batch result: %w", err)
	}
	return nil
}

// LoadBatch reads the cached batch result.
func (c *ReportCache) LoadBatch(ctx context.Context) (*models.BatchResult, error) {
	payload, err := c.client.Get(ctx, batchKey).Bytes()
	if err != nil {
		return nil, fmt.Errorf("load batch result: %w", err)
	}

	var batch models.BatchResult
	if err := json.Unmarshal(payload, &batch); err != nil {
		return nil, fmt.Errorf("decode batch result: %w", err)
	}
	return &batch, nil
}

// SaveDedupeReport stores the latest duplicate scan.
func (c *ReportCache) SaveDedupeReport(ctx context.Context, report *dedupe.Report) error {
	payload, err := marshalJSON(report, "dedupe report")
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, dedupeReportKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache dedupe report: %w", err)
	}
	return nil
}

// LoadDedupeReport reads the latest duplicate scan.
func (c *ReportCache) LoadDedupeReport(ctx context.Context) (*dedupe.Report, error) {
	payload, err := c.client.Get(ctx, dedupeReportKey).Bytes()
	if err != nil {
		return nil, fmt.Errorf("load dedupe report: %w", err)
	}

	var report dedupe.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("decode dedupe report: %w", err)
	}
	return &report, nil
}

// ReportIndexer writes provider reports into Elasticsearch for search
// and historical analysis.
type ReportIndexer struct {
	client *elasticsearch.Client
	index  string
}

// NewReportIndexer wraps an Elasticsearch client targeting one index.
func NewReportIndexer(client *elasticsearch.Client, index string) *ReportIndexer {
	if index == "" {
		index = "provider-reports"
	}
	return &ReportIndexer{client: client, index: index}
}

// IndexReport stores one provider report document keyed by provider id.
func (x *ReportIndexer) IndexReport(ctx context.Context, report *models.ProviderReport) error {
	payload, err := marshalJSON(report, "provider report")
	if err != nil {
		return err
	}

	res, err := x.client.Index(
		x.index,
		bytes.NewReader(payload),
		x.client.Index.WithContext(ctx),
		x.client.Index.WithDocumentID(report.ProviderID),
	)
	if err != nil {
		return fmt.Errorf("index report %s: %w", report.ProviderID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index report %s: %s: %s", report.ProviderID, res.Status(), body)
	}
	return nil
}

// IndexBatch stores every report in a batch, stopping at the first
// failure.
func (x *ReportIndexer) IndexBatch(ctx context.Context, reports []models.ProviderReport) error {
	for i := range reports {
		if err := x.IndexReport(ctx, &reports[i]); err != nil {
			return err
		}
	}
	return nil
}
