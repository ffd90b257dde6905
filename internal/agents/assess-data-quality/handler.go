// internal/agents/assess-data-quality/handler.go
package assessdataquality

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"provider-validation/internal/common/logger"
	"provider-validation/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "assess-data-quality"

	// Providers below this quality score always go to manual review.
	reviewQualityThreshold = 70.0
)

// Specialties where directory errors hit the most members.
var highDemandSpecialties = map[string]bool{
	"Family Medicine":   true,
	"Pediatrics":        true,
	"Internal Medicine": true,
}

type Handler struct {
	config *Config
	rng    *rand.Rand
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.StaleAfterDays == 0 {
		config.StaleAfterDays = 180
	}
	return &Handler{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
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
		h.failJob(client, job, "QUALITY_ASSESSMENT_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	comparison := h.CompareDataSources(input.Provider, input.Validation, input.Enrichment)
	redFlags := h.FlagSuspiciousData(input.Provider, input.Validation)
	score := h.CalculateQualityScore(input.Validation, input.Enrichment, comparison, redFlags)
	priority := h.PrioritizeForReview(score, redFlags, input.Provider)

	return &Output{Quality: models.QualityResult{
		ProviderID:           input.Provider.ProviderID,
		QualityScore:         score,
		ComparisonResults:    comparison,
		RedFlags:             redFlags,
		PriorityInfo:         priority,
		RequiresManualReview: score < reviewQualityThreshold || len(redFlags) > 0,
	}}, nil
}

// CompareDataSources checks validated data against enrichment findings.
func (h *Handler) CompareDataSources(provider models.Provider,
	validation models.ValidationResult, enrichment models.EnrichmentResult) models.ComparisonResults {

	discrepancies := []models.Discrepancy{}

	if validation.PhoneValidation.Valid && enrichment.WebsiteData.AdditionalPhone != "" {
		discrepancies = append(discrepancies, models.Discrepancy{
			Field:    "phone",
			Issue:    "Multiple phone numbers found",
			Severity: "Low",
			Action:   "Verify primary contact number",
		})
	}

	if len(enrichment.WebsiteData.UpdatedSpecialties) > 1 {
		discrepancies = append(discrepancies, models.Discrepancy{
			Field:    "specialty",
			Issue:    "Additional specialties found online",
			Severity: "Medium",
			Action:   "Update provider specialty list",
		})
	}

	verified := len(enrichment.HospitalData.VerifiedAffiliations)
	original := len(provider.HospitalAffiliations)
	if verified < original {
		discrepancies = append(discrepancies, models.Discrepancy{
			Field:    "hospital_affiliations",
			Issue:    fmt.Sprintf("Only %d of %d affiliations verified", verified, original),
			Severity: "High",
			Action:   "Manual verification required",
		})
	}

	return models.ComparisonResults{
		DiscrepanciesFound: len(discrepancies),
		Discrepancies:      discrepancies,
	}
}

// FlagSuspiciousData identifies potentially fraudulent or stale information.
func (h *Handler) FlagSuspiciousData(provider models.Provider,
	validation models.ValidationResult) []models.RedFlag {

	redFlags := []models.RedFlag{}

	if provider.Phone == "(000) 000-0000" {
		redFlags = append(redFlags, models.RedFlag{
			Type:        "Placeholder Data",
			Field:       "phone",
			Severity:    "High",
			Description: "Phone number appears to be placeholder",
		})
	}

	if strings.Contains(provider.Address, "Old Address") {
		redFlags = append(redFlags, models.RedFlag{
			Type:        "Outdated Data",
			Field:       "address",
			Severity:    "High",
			Description: "Address appears outdated",
		})
	}

	if provider.LicenseStatus == "Unknown" {
		redFlags = append(redFlags, models.RedFlag{
			Type:        "Credential Issue",
			Field:       "license_status",
			Severity:    "Critical",
			Description: "License status cannot be verified",
		})
	}

	if provider.LastVerified != "" {
		if lastVerified, err := time.Parse("2006-01-02", provider.LastVerified); err == nil {
			days := int(time.Since(lastVerified).Hours() / 24)
			if days > h.config.StaleAfterDays {
				redFlags = append(redFlags, models.RedFlag{
					Type:        "Stale Data",
					Field:       "last_verified",
					Severity:    "Medium",
					Description: fmt.Sprintf("Provider data not verified in %d days", days),
				})
			}
		}
	}

	if nameMatch, ok := validation.NPIValidation.Data["name_match"].(bool); ok && !nameMatch {
		redFlags = append(redFlags, models.RedFlag{
			Type:        "Identity Mismatch",
			Field:       "npi",
			Severity:    "Critical",
			Description: "NPI name does not match provider record",
		})
	}

	return redFlags
}

// CalculateQualityScore computes the 0-100 data quality score.
func (h *Handler) CalculateQualityScore(validation models.ValidationResult,
	enrichment models.EnrichmentResult, comparison models.ComparisonResults,
	redFlags []models.RedFlag) float64 {

	score := 100.0

	if !validation.PhoneValidation.Valid {
		score -= 15
	}
	if !validation.AddressValidation.Valid {
		score -= 15
	}
	if !validation.NPIValidation.Valid {
		score -= 20
	}
	if !validation.LicenseValidation.Valid {
		score -= 25
	}

	score -= float64(comparison.DiscrepanciesFound) * 5

	for _, flag := range redFlags {
		switch flag.Severity {
		case "Critical":
			score -= 15
		case "High":
			score -= 10
		case "Medium":
			score -= 5
		default:
			score -= 2
		}
	}

	if enrichment.EnrichmentConfidence > 0.80 {
		score += 5
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// PrioritizeForReview ranks the provider for manual review.
func (h *Handler) PrioritizeForReview(qualityScore float64,
	redFlags []models.RedFlag, provider models.Provider) models.PriorityInfo {

	priorityScore := 0

	if qualityScore < 50 {
		priorityScore += 40
	} else if qualityScore < 70 {
		priorityScore += 20
	}

	for _, flag := range redFlags {
		switch flag.Severity {
		case "Critical":
			priorityScore += 25
		case "High":
			priorityScore += 10
		}
	}

	if highDemandSpecialties[provider.Specialty] {
		priorityScore += 10
	}

	priority := "Low"
	switch {
	case priorityScore >= 60:
		priority = "Critical"
	case priorityScore >= 35:
		priority = "High"
	case priorityScore >= 15:
		priority = "Medium"
	}

	return models.PriorityInfo{
		Priority:            priority,
		PriorityScore:       priorityScore,
		EstimatedReviewTime: fmt.Sprintf("%d minutes", 5+h.rng.Intn(26)),
		RecommendedActions:  recommendedActions(redFlags, qualityScore),
	}
}

func recommendedActions(redFlags []models.RedFlag, qualityScore float64) []string {
	actions := []string{}

	for _, flag := range redFlags {
		if flag.Severity == "Critical" || flag.Severity == "High" {
			actions = append(actions, fmt.Sprintf("Verify %s: %s", flag.Field, flag.Description))
		}
	}

	if qualityScore < reviewQualityThreshold {
		actions = append(actions, "Complete comprehensive data verification")
	}

	if len(actions) == 0 {
		actions = append(actions, "Routine review - no critical issues found")
	}

	return actions
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
