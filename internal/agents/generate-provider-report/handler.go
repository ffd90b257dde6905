// internal/agents/generate-provider-report/handler.go
package generateproviderreport

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"provider-validation/internal/common/logger"
	"provider-validation/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "generate-provider-report"

// Spacing between successive manual reviews when estimating queue wait.
const reviewSlotMinutes = 15

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config.ProviderRelationsPhone == "" {
		config.ProviderRelationsPhone = "(800) 555-0199"
	}
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.failJob(client, job, "REPORT_GENERATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Output{
		Report: h.GenerateReport(input.Provider, input.Validation, input.Enrichment, input.Quality),
	}, nil
}

// GenerateReport assembles the per-provider validation report.
func (h *Handler) GenerateReport(provider models.Provider,
	validation models.ValidationResult, enrichment models.EnrichmentResult,
	quality models.QualityResult) models.ProviderReport {

	return models.ProviderReport{
		ProviderID:          provider.ProviderID,
		ProviderName:        provider.FullName(),
		Specialty:           provider.Specialty,
		ValidationTimestamp: time.Now().Format(time.RFC3339),
		OverallStatus:       DetermineStatus(quality.QualityScore),
		QualityMetrics: models.QualityMetrics{
			QualityScore:    quality.QualityScore,
			ConfidenceScore: validation.OverallConfidence,
			EnrichmentScore: enrichment.EnrichmentConfidence,
		},
		ValidationSummary: models.ValidationSummary{
			Phone:   validLabel(validation.PhoneValidation.Valid),
			Address: validLabel(validation.AddressValidation.Valid),
			NPI:     validLabel(validation.NPIValidation.Valid),
			License: validLabel(validation.LicenseValidation.Valid),
		},
		IssuesFound:   validation.IssuesFound,
		RedFlags:      quality.RedFlags,
		Discrepancies: quality.ComparisonResults.Discrepancies,
		EnrichmentSummary: models.EnrichmentSummary{
			WebsiteFound:         enrichment.WebsiteData.WebsiteFound,
			OnlineProfilesFound:  enrichment.OnlineProfiles.HealthgradesFound,
			AffiliationsVerified: len(enrichment.HospitalData.VerifiedAffiliations),
		},
		Priority:             quality.PriorityInfo.Priority,
		RecommendedActions:   quality.PriorityInfo.RecommendedActions,
		RequiresManualReview: quality.RequiresManualReview,
	}
}

// DetermineStatus maps a quality score onto the directory status scale.
func DetermineStatus(qualityScore float64) string {
	switch {
	case qualityScore >= 90:
		return "Excellent"
	case qualityScore >= 75:
		return "Good"
	case qualityScore >= 60:
		return "Fair"
	case qualityScore >= 40:
		return "Poor"
	default:
		return "Critical"
	}
}

func validLabel(valid bool) string {
	if valid {
		return "Valid"
	}
	return "Invalid"
}

// CreateSummaryReport aggregates a batch of provider reports.
func CreateSummaryReport(reports []models.ProviderReport) models.SummaryReport {
	summary := models.SummaryReport{
		TotalProvidersValidated: len(reports),
		ValidationTimestamp:     time.Now().Format(time.RFC3339),
		StatusDistribution: map[string]int{
			"Excellent": 0,
			"Good":      0,
			"Fair":      0,
			"Poor":      0,
			"Critical":  0,
		},
	}

	if len(reports) == 0 {
		return summary
	}

	totalQuality := 0.0
	totalConfidence := 0.0
	for _, report := range reports {
		summary.StatusDistribution[report.OverallStatus]++
		totalQuality += report.QualityMetrics.QualityScore
		totalConfidence += report.QualityMetrics.ConfidenceScore

		if report.RequiresManualReview {
			summary.ProvidersNeedingReview++
		}
		switch report.Priority {
		case "Critical":
			summary.CriticalPriorityCount++
		case "High":
			summary.HighPriorityCount++
		}
	}

	n := float64(len(reports))
	summary.AverageQualityScore = round2(totalQuality / n)
	summary.AverageConfidenceScore = round2(totalConfidence / n)
	summary.ValidationSuccessRate = round1(float64(len(reports)-summary.ProvidersNeedingReview) / n * 100)

	return summary
}

// CreateManualReviewQueue filters reports needing review and orders them by
// priority, then by ascending quality score within the same priority.
func CreateManualReviewQueue(reports []models.ProviderReport) []models.ProviderReport {
	priorityOrder := map[string]int{"Critical": 0, "High": 1, "Medium": 2, "Low": 3}

	queue := []models.ProviderReport{}
	for _, report := range reports {
		if report.RequiresManualReview {
			queue = append(queue, report)
		}
	}

	sort.SliceStable(queue, func(i, j int) bool {
		pi, ok := priorityOrder[queue[i].Priority]
		if !ok {
			pi = 4
		}
		pj, ok := priorityOrder[queue[j].Priority]
		if !ok {
			pj = 4
		}
		if pi != pj {
			return pi < pj
		}
		return queue[i].QualityMetrics.QualityScore < queue[j].QualityMetrics.QualityScore
	})

	for i := range queue {
		queue[i].QueuePosition = i + 1
		queue[i].EstimatedWaitTime = fmt.Sprintf("%d minutes", i*reviewSlotMinutes)
	}

	return queue
}

// GenerateDashboardData prepares aggregates for the web dashboard.
func GenerateDashboardData(reports []models.ProviderReport) models.DashboardData {
	issueCounts := map[string]int{}
	for _, report := range reports {
		for _, issue := range report.IssuesFound {
			issueCounts[issue]++
		}
	}

	topIssues := make([]models.IssueCount, 0, len(issueCounts))
	for issue, count := range issueCounts {
		topIssues = append(topIssues, models.IssueCount{Issue: issue, Count: count})
	}
	sort.SliceStable(topIssues, func(i, j int) bool {
		if topIssues[i].Count != topIssues[j].Count {
			return topIssues[i].Count > topIssues[j].Count
		}
		return topIssues[i].Issue < topIssues[j].Issue
	})
	if len(topIssues) > 10 {
		topIssues = topIssues[:10]
	}

	scoreRanges := map[string]int{
		"90-100": 0,
		"75-89":  0,
		"60-74":  0,
		"40-59":  0,
		"0-39":   0,
	}
	for _, report := range reports {
		score := report.QualityMetrics.QualityScore
		switch {
		case score >= 90:
			scoreRanges["90-100"]++
		case score >= 75:
			scoreRanges["75-89"]++
		case score >= 60:
			scoreRanges["60-74"]++
		case score >= 40:
			scoreRanges["40-59"]++
		default:
			scoreRanges["0-39"]++
		}
	}

	return models.DashboardData{
		Summary:             CreateSummaryReport(reports),
		ReviewQueue:         CreateManualReviewQueue(reports),
		TopIssues:           topIssues,
		QualityDistribution: scoreRanges,
	}
}

// GenerateCommunicationEmail renders the data update request sent to a
// provider's office.
func (h *Handler) GenerateCommunicationEmail(provider models.Provider,
	report models.ProviderReport) string {

	var b strings.Builder

	acceptingPatients := "No"
	if provider.AcceptingNewPatients {
		acceptingPatients = "Yes"
	}

	fmt.Fprintf(&b, `Subject: Provider Directory Information Update Request

Dear Dr. %s,

We are updating our provider directory to ensure our members have accurate information when seeking care. As part of our routine data validation process, we would like to verify the following information for your practice:

Provider Information:
- Name: %s %s
- Specialty: %s
- NPI: %s

Current Information on File:
- Phone: %s
- Address: %s, %s, %s %s
- Accepting New Patients: %s
`,
		provider.LastName,
		provider.FirstName, provider.LastName,
		provider.Specialty,
		provider.NPI,
		provider.Phone,
		provider.Address, provider.City, provider.State, provider.ZipCode,
		acceptingPatients)

	if len(report.IssuesFound) > 0 {
		b.WriteString("\nWe have identified the following items that need verification:\n")
		for _, issue := range report.IssuesFound {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}

	if len(report.RecommendedActions) > 0 {
		b.WriteString("\nRequired Actions:\n")
		for _, action := range report.RecommendedActions {
			fmt.Fprintf(&b, "- %s\n", action)
		}
	}

	fmt.Fprintf(&b, `
Please review the information above and respond with any updates or corrections at your earliest convenience. Accurate provider information helps our members access care efficiently.

To update your information, please reply to this email or call our Provider Relations team at %s.

Thank you for your continued participation in our network.

Best regards,
Provider Relations Team
Healthcare Network Services
`, h.config.ProviderRelationsPhone)

	return b.String()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
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
