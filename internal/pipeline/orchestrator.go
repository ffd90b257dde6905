// internal/pipeline/orchestrator.go

// Package pipeline runs provider records through the validation stages
// in-process, without a workflow engine. It backs the dashboard API and
// the CLI batch mode; the Camunda workers expose the same stages as
// individual jobs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	analyzetrends "provider-validation/internal/agents/analyze-trends"
	assessdataquality "provider-validation/internal/agents/assess-data-quality"
	enrichproviderinfo "provider-validation/internal/agents/enrich-provider-info"
	generateproviderreport "provider-validation/internal/agents/generate-provider-report"
	validateproviderdata "provider-validation/internal/agents/validate-provider-data"
	"provider-validation/internal/common/logger"
	"provider-validation/internal/common/metrics"
	"provider-validation/internal/dedupe"
	"provider-validation/internal/models"
)

// Orchestrator coordinates the per-provider stages and batch aggregation.
type Orchestrator struct {
	validator *validateproviderdata.Handler
	enricher  *enrichproviderinfo.Handler
	assessor  *assessdataquality.Handler
	reporter  *generateproviderreport.Handler
	analyst   *analyzetrends.Handler
	detector  *dedupe.Detector
	logger    logger.Logger
}

// Options overrides individual stage handlers, mainly for tests. Nil
// fields fall back to default-configured handlers.
type Options struct {
	Validator *validateproviderdata.Handler
	Enricher  *enrichproviderinfo.Handler
	Assessor  *assessdataquality.Handler
	Reporter  *generateproviderreport.Handler
	Analyst   *analyzetrends.Handler
}

// NewOrchestrator wires the four pipeline stages with default configs.
func NewOrchestrator(log logger.Logger) *Orchestrator {
	return &Orchestrator{
		validator: validateproviderdata.NewHandler(validateproviderdata.LoadConfig(), log),
		enricher:  enrichproviderinfo.NewHandler(enrichproviderinfo.LoadConfig(), log),
		assessor:  assessdataquality.NewHandler(assessdataquality.LoadConfig(), log),
		reporter:  generateproviderreport.NewHandler(generateproviderreport.LoadConfig(), log),
		analyst:   analyzetrends.NewHandler(analyzetrends.LoadConfig(), log),
		detector:  dedupe.NewDetector(),
		logger:    log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

// NewOrchestratorWithOptions wires the pipeline with explicit handlers.
func NewOrchestratorWithOptions(log logger.Logger, opts Options) *Orchestrator {
	o := NewOrchestrator(log)
	if opts.Validator != nil {
		o.validator = opts.Validator
	}
	if opts.Enricher != nil {
		o.enricher = opts.Enricher
	}
	if opts.Assessor != nil {
		o.assessor = opts.Assessor
	}
	if opts.Reporter != nil {
		o.reporter = opts.Reporter
	}
	if opts.Analyst != nil {
		o.analyst = opts.Analyst
	}
	return o
}

// ValidateProvider runs one provider through validation, enrichment,
// quality assessment, and report generation. The returned result carries
// the provider record updated with the pipeline-managed fields.
func (o *Orchestrator) ValidateProvider(ctx context.Context, provider models.Provider) (*models.ProviderResult, error) {
	validated, err := o.validator.Execute(ctx, &validateproviderdata.Input{Provider: provider})
	if err != nil {
		return nil, fmt.Errorf("validate provider %s: %w", provider.ProviderID, err)
	}

	enriched, err := o.enricher.Execute(ctx, &enrichproviderinfo.Input{Provider: provider})
	if err != nil {
		return nil, fmt.Errorf("enrich provider %s: %w", provider.ProviderID, err)
	}

	assessed, err := o.assessor.Execute(ctx, &assessdataquality.Input{
		Provider:   provider,
		Validation: validated.Validation,
		Enrichment: enriched.Enrichment,
	})
	if err != nil {
		return nil, fmt.Errorf("assess provider %s: %w", provider.ProviderID, err)
	}

	reported, err := o.reporter.Execute(ctx, &generateproviderreport.Input{
		Provider:   provider,
		Validation: validated.Validation,
		Enrichment: enriched.Enrichment,
		Quality:    assessed.Quality,
	})
	if err != nil {
		return nil, fmt.Errorf("report provider %s: %w", provider.ProviderID, err)
	}

	provider.ValidationStatus = reported.Report.OverallStatus
	provider.ConfidenceScore = validated.Validation.OverallConfidence
	provider.DataQualityScore = assessed.Quality.QualityScore
	provider.NeedsManualReview = assessed.Quality.RequiresManualReview
	provider.IssuesFound = validated.Validation.IssuesFound
	provider.LastVerified = time.Now().Format("2006-01-02")

	return &models.ProviderResult{
		Provider:   provider,
		Validation: validated.Validation,
		Enrichment: enriched.Enrichment,
		Quality:    assessed.Quality,
		Report:     reported.Report,
	}, nil
}

// ValidateBatch runs a batch of providers through the pipeline. A failed
// provider is skipped; the rest of the batch continues. batchSize <= 0
// means process everything.
func (o *Orchestrator) ValidateBatch(ctx context.Context, providers []models.Provider, batchSize int) (*models.BatchResult, error) {
	start := time.Now()

	total := len(providers)
	if batchSize > 0 && batchSize < len(providers) {
		providers = providers[:batchSize]
	}

	results := make([]models.ProviderResult, 0, len(providers))
	stats := models.ProcessingStats{TotalProviders: total}

	for _, provider := range providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := o.ValidateProvider(ctx, provider)
		if err != nil {
			stats.ProvidersSkipped++
			metrics.ProvidersProcessed.WithLabelValues("skipped").Inc()
			o.logger.Warn("skipping provider after stage failure", map[string]interface{}{
				"providerId": provider.ProviderID,
				"error":      err.Error(),
			})
			continue
		}

		results = append(results, *result)
		if result.Quality.RequiresManualReview {
			stats.ProvidersNeedingReview++
			metrics.ProvidersProcessed.WithLabelValues("needs_review").Inc()
		} else {
			stats.ProvidersValidated++
			metrics.ProvidersProcessed.WithLabelValues("validated").Inc()
		}
	}

	stats.TotalTimeSeconds = time.Since(start).Seconds()

	reports := Reports(results)
	o.logger.Info("batch validation complete", map[string]interface{}{
		"totalProviders": total,
		"processed":      len(results),
		"needsReview":    stats.ProvidersNeedingReview,
		"skipped":        stats.ProvidersSkipped,
	})

	return &models.BatchResult{
		Results:         results,
		Summary:         generateproviderreport.CreateSummaryReport(reports),
		ProcessingStats: stats,
		GeneratedAt:     time.Now().Format(time.RFC3339),
	}, nil
}

// GenerateDashboard builds the dashboard aggregates for a finished batch.
func (o *Orchestrator) GenerateDashboard(results []models.ProviderResult) models.DashboardData {
	return generateproviderreport.GenerateDashboardData(Reports(results))
}

// DetectDuplicates scans a provider set for likely duplicate records.
func (o *Orchestrator) DetectDuplicates(providers []models.Provider) *dedupe.Report {
	records := make([]dedupe.Record, 0, len(providers))
	for i := range providers {
		records = append(records, providers[i].ToRecord())
	}

	report := o.detector.GenerateReport(records)
	for confidence, count := range report.ByConfidence {
		metrics.DuplicatePairsFound.WithLabelValues(confidence).Add(float64(count))
	}
	return report
}

// AnalyzeTrends builds the geographic, specialty, and seasonal trend
// report for a finished batch.
func (o *Orchestrator) AnalyzeTrends(ctx context.Context, results []models.ProviderResult) (*analyzetrends.TrendReport, error) {
	output, err := o.analyst.Execute(ctx, &analyzetrends.Input{Results: results})
	if err != nil {
		return nil, fmt.Errorf("analyze trends: %w", err)
	}
	return &output.Report, nil
}

// EmailForProvider renders the outreach email for one provider in a
// finished batch.
func (o *Orchestrator) EmailForProvider(results []models.ProviderResult, providerID string) (string, error) {
	for i := range results {
		if results[i].Provider.ProviderID == providerID {
			return o.reporter.GenerateCommunicationEmail(results[i].Provider, results[i].Report), nil
		}
	}
	return "", fmt.Errorf("provider %s not found in results", providerID)
}

// Reports projects the per-provider reports out of a result set.
func Reports(results []models.ProviderResult) []models.ProviderReport {
	reports := make([]models.ProviderReport, 0, len(results))
	for i := range results {
		reports = append(reports, results[i].Report)
	}
	return reports
}
