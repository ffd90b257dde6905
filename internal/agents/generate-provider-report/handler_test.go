// internal/agents/generate-provider-report/handler_test.go
package generateproviderreport

import (
	"context"
	"testing"
	"time"

	"provider-validation/internal/common/logger"
	"provider-validation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(&Config{Timeout: 10 * time.Second}, logger.NewTestLogger(t))
}

func createInput() *Input {
	return &Input{
		Provider: models.Provider{
			ProviderID:           "PRV00001",
			NPI:                  "1234567890",
			FirstName:            "John",
			LastName:             "Smith",
			Specialty:            "Cardiology",
			Phone:                "(555) 123-4567",
			Address:              "100 Medical Plaza",
			City:                 "Springfield",
			State:                "IL",
			ZipCode:              "62701",
			AcceptingNewPatients: true,
		},
		Validation: models.ValidationResult{
			ProviderID:        "PRV00001",
			PhoneValidation:   models.FieldValidation{Valid: true},
			AddressValidation: models.FieldValidation{Valid: true},
			NPIValidation:     models.FieldValidation{Valid: true},
			LicenseValidation: models.FieldValidation{Valid: false},
			OverallConfidence: 0.88,
			IssuesFound:       []string{"License expired"},
		},
		Enrichment: models.EnrichmentResult{
			WebsiteData:    models.WebsiteData{WebsiteFound: true},
			OnlineProfiles: models.OnlineProfiles{HealthgradesFound: true},
			HospitalData: models.HospitalData{
				VerifiedAffiliations: []models.Affiliation{{Name: "Springfield General"}},
			},
			EnrichmentConfidence: 0.77,
		},
		Quality: models.QualityResult{
			QualityScore: 72,
			PriorityInfo: models.PriorityInfo{
				Priority:           "Medium",
				RecommendedActions: []string{"Verify license_number: License expired"},
			},
			RequiresManualReview: true,
		},
	}
}

func report(id string, status string, quality float64, priority string, review bool) models.ProviderReport {
	return models.ProviderReport{
		ProviderID:           id,
		OverallStatus:        status,
		QualityMetrics:       models.QualityMetrics{QualityScore: quality, ConfidenceScore: quality / 100},
		Priority:             priority,
		RequiresManualReview: review,
	}
}

// ==========================
// GenerateReport
// ==========================

func TestHandler_Execute(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), createInput())
	require.NoError(t, err)
	require.NotNil(t, output)

	r := output.Report
	assert.Equal(t, "PRV00001", r.ProviderID)
	assert.Equal(t, "John Smith", r.ProviderName)
	assert.Equal(t, "Fair", r.OverallStatus)
	assert.Equal(t, 72.0, r.QualityMetrics.QualityScore)
	assert.Equal(t, 0.88, r.QualityMetrics.ConfidenceScore)
	assert.Equal(t, 0.77, r.QualityMetrics.EnrichmentScore)
	assert.Equal(t, "Valid", r.ValidationSummary.Phone)
	assert.Equal(t, "Invalid", r.ValidationSummary.License)
	assert.Equal(t, []string{"License expired"}, r.IssuesFound)
	assert.Equal(t, 1, r.EnrichmentSummary.AffiliationsVerified)
	assert.Equal(t, "Medium", r.Priority)
	assert.True(t, r.RequiresManualReview)
	assert.NotEmpty(t, r.ValidationTimestamp)
}

func TestDetermineStatus(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{100, "Excellent"},
		{90, "Excellent"},
		{89.9, "Good"},
		{75, "Good"},
		{60, "Fair"},
		{40, "Poor"},
		{39.9, "Critical"},
		{0, "Critical"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, DetermineStatus(tt.score), "score %v", tt.score)
	}
}

// ==========================
// CreateSummaryReport
// ==========================

func TestCreateSummaryReport(t *testing.T) {
	reports := []models.ProviderReport{
		report("PRV00001", "Excellent", 95, "Low", false),
		report("PRV00002", "Good", 80, "Medium", true),
		report("PRV00003", "Critical", 30, "Critical", true),
		report("PRV00004", "Fair", 65, "High", true),
	}

	summary := CreateSummaryReport(reports)

	assert.Equal(t, 4, summary.TotalProvidersValidated)
	assert.Equal(t, 1, summary.StatusDistribution["Excellent"])
	assert.Equal(t, 1, summary.StatusDistribution["Critical"])
	assert.Equal(t, 0, summary.StatusDistribution["Poor"])
	assert.Equal(t, 67.5, summary.AverageQualityScore)
	assert.Equal(t, 3, summary.ProvidersNeedingReview)
	assert.Equal(t, 1, summary.CriticalPriorityCount)
	assert.Equal(t, 1, summary.HighPriorityCount)
	assert.Equal(t, 25.0, summary.ValidationSuccessRate)
}

func TestCreateSummaryReport_Empty(t *testing.T) {
	summary := CreateSummaryReport(nil)

	assert.Zero(t, summary.TotalProvidersValidated)
	assert.Zero(t, summary.AverageQualityScore)
	assert.Zero(t, summary.ValidationSuccessRate)
	assert.Len(t, summary.StatusDistribution, 5)
}

// ==========================
// CreateManualReviewQueue
// ==========================

func TestCreateManualReviewQueue(t *testing.T) {
	reports := []models.ProviderReport{
		report("PRV00001", "Excellent", 95, "Low", false),
		report("PRV00002", "Fair", 65, "High", true),
		report("PRV00003", "Critical", 30, "Critical", true),
		report("PRV00004", "Poor", 45, "High", true),
	}

	queue := CreateManualReviewQueue(reports)
	require.Len(t, queue, 3)

	// Critical first, then High ordered by ascending quality score.
	assert.Equal(t, "PRV00003", queue[0].ProviderID)
	assert.Equal(t, "PRV00004", queue[1].ProviderID)
	assert.Equal(t, "PRV00002", queue[2].ProviderID)

	assert.Equal(t, 1, queue[0].QueuePosition)
	assert.Equal(t, "0 minutes", queue[0].EstimatedWaitTime)
	assert.Equal(t, 3, queue[2].QueuePosition)
	assert.Equal(t, "30 minutes", queue[2].EstimatedWaitTime)
}

func TestCreateManualReviewQueue_DoesNotMutateInput(t *testing.T) {
	reports := []models.ProviderReport{
		report("PRV00001", "Critical", 30, "Critical", true),
	}

	_ = CreateManualReviewQueue(reports)
	assert.Zero(t, reports[0].QueuePosition)
	assert.Empty(t, reports[0].EstimatedWaitTime)
}

// ==========================
// GenerateDashboardData
// ==========================

func TestGenerateDashboardData(t *testing.T) {
	r1 := report("PRV00001", "Excellent", 95, "Low", false)
	r1.IssuesFound = []string{"Invalid phone number format"}
	r2 := report("PRV00002", "Poor", 45, "High", true)
	r2.IssuesFound = []string{"Invalid phone number format", "License expired"}
	r3 := report("PRV00003", "Fair", 65, "Medium", true)

	dashboard := GenerateDashboardData([]models.ProviderReport{r1, r2, r3})

	assert.Equal(t, 3, dashboard.Summary.TotalProvidersValidated)
	assert.Len(t, dashboard.ReviewQueue, 2)

	require.NotEmpty(t, dashboard.TopIssues)
	assert.Equal(t, "Invalid phone number format", dashboard.TopIssues[0].Issue)
	assert.Equal(t, 2, dashboard.TopIssues[0].Count)

	assert.Equal(t, 1, dashboard.QualityDistribution["90-100"])
	assert.Equal(t, 1, dashboard.QualityDistribution["60-74"])
	assert.Equal(t, 1, dashboard.QualityDistribution["40-59"])
	assert.Equal(t, 0, dashboard.QualityDistribution["0-39"])
}

// ==========================
// GenerateCommunicationEmail
// ==========================

func TestHandler_GenerateCommunicationEmail(t *testing.T) {
	handler := createTestHandler(t)
	input := createInput()

	r := handler.GenerateReport(input.Provider, input.Validation, input.Enrichment, input.Quality)
	email := handler.GenerateCommunicationEmail(input.Provider, r)

	assert.Contains(t, email, "Subject: Provider Directory Information Update Request")
	assert.Contains(t, email, "Dear Dr. Smith,")
	assert.Contains(t, email, "NPI: 1234567890")
	assert.Contains(t, email, "Address: 100 Medical Plaza, Springfield, IL 62701")
	assert.Contains(t, email, "Accepting New Patients: Yes")
	assert.Contains(t, email, "- License expired")
	assert.Contains(t, email, "Required Actions:")
	assert.Contains(t, email, "(800) 555-0199")
}

func TestHandler_GenerateCommunicationEmail_NoIssues(t *testing.T) {
	handler := createTestHandler(t)
	input := createInput()
	input.Validation.IssuesFound = nil

	r := handler.GenerateReport(input.Provider, input.Validation, input.Enrichment, input.Quality)
	email := handler.GenerateCommunicationEmail(input.Provider, r)

	assert.NotContains(t, email, "items that need verification")
}
