// internal/agents/analyze-trends/handler_test.go
package analyzetrends

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
	return NewHandler(&Config{Timeout: 10 * time.Second, Seed: 42}, logger.NewTestLogger(t))
}

func createResult(state, specialty string, quality float64, status string, issues []string) models.ProviderResult {
	return models.ProviderResult{
		Provider: models.Provider{
			State:     state,
			Specialty: specialty,
		},
		Validation: models.ValidationResult{IssuesFound: issues},
		Quality:    models.QualityResult{QualityScore: quality},
		Report:     models.ProviderReport{OverallStatus: status},
	}
}

func createBatch() []models.ProviderResult {
	return []models.ProviderResult{
		createResult("IL", "Cardiology", 90, "Excellent", nil),
		createResult("IL", "Cardiology", 80, "Good", []string{"License expired"}),
		createResult("TX", "Pediatrics", 35, "Critical", []string{"Invalid phone number format", "License expired"}),
		createResult("TX", "Pediatrics", 45, "Poor", []string{"Invalid phone number format"}),
		createResult("CA", "Dermatology", 65, "Fair", nil),
	}
}

// ==========================
// AnalyzeGeographicPatterns
// ==========================

func TestHandler_AnalyzeGeographicPatterns(t *testing.T) {
	handler := createTestHandler(t)

	analysis := handler.AnalyzeGeographicPatterns(createBatch())
	require.Len(t, analysis.ByState, 3)

	il := analysis.ByState["IL"]
	assert.Equal(t, 2, il.TotalProviders)
	assert.Equal(t, 85.0, il.AverageQualityScore)
	assert.Equal(t, 0.5, il.IssuesPerProvider)
	assert.Equal(t, 0.0, il.CriticalPercentage)
	assert.Equal(t, "Cardiology", il.TopSpecialty)
	assert.Equal(t, "Low", il.RiskLevel)

	tx := analysis.ByState["TX"]
	assert.Equal(t, 40.0, tx.AverageQualityScore)
	assert.Equal(t, 1.5, tx.IssuesPerProvider)
	assert.Equal(t, 50.0, tx.CriticalPercentage)
	assert.Equal(t, "High", tx.RiskLevel)

	require.NotEmpty(t, analysis.HighestRiskStates)
	assert.Equal(t, "TX", analysis.HighestRiskStates[0].State)
	require.NotEmpty(t, analysis.LowestRiskStates)
	assert.Equal(t, "IL", analysis.LowestRiskStates[0].State)
}

func TestHandler_AnalyzeGeographicPatterns_UnknownState(t *testing.T) {
	handler := createTestHandler(t)

	analysis := handler.AnalyzeGeographicPatterns([]models.ProviderResult{
		createResult("", "Cardiology", 70, "Fair", nil),
	})

	require.Contains(t, analysis.ByState, "Unknown")
	assert.Equal(t, 1, analysis.ByState["Unknown"].TotalProviders)
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		name       string
		avgQuality float64
		critical   int
		total      int
		expected   string
	}{
		{"low quality", 35, 0, 10, "High"},
		{"high critical ratio", 70, 4, 10, "High"},
		{"medium quality", 55, 0, 10, "Medium"},
		{"elevated critical ratio", 75, 2, 10, "Medium"},
		{"healthy", 80, 1, 10, "Low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, riskLevel(tt.avgQuality, tt.critical, tt.total))
		})
	}
}

// ==========================
// DetectSpecialtyTrends
// ==========================

func TestHandler_DetectSpecialtyTrends(t *testing.T) {
	handler := createTestHandler(t)

	trends := handler.DetectSpecialtyTrends(createBatch())
	require.Len(t, trends.BySpecialty, 3)

	peds := trends.BySpecialty["Pediatrics"]
	assert.Equal(t, 2, peds.ProviderCount)
	assert.Equal(t, 40.0, peds.AverageQualityScore)
	assert.Equal(t, "↓ Declining", peds.TrendIndicator)
	require.NotEmpty(t, peds.TopIssues)
	assert.Equal(t, "Invalid phone number format", peds.TopIssues[0].Issue)
	assert.Equal(t, 2, peds.TopIssues[0].Count)
	assert.Equal(t, 1, peds.StatusDistribution["Critical"])

	cardio := trends.BySpecialty["Cardiology"]
	assert.Equal(t, 85.0, cardio.AverageQualityScore)
	assert.Equal(t, "↑ Improving", cardio.TrendIndicator)

	require.NotEmpty(t, trends.BestPerforming)
	assert.Equal(t, "Cardiology", trends.BestPerforming[0].Specialty)
	require.NotEmpty(t, trends.NeedsAttention)
	assert.Equal(t, "Pediatrics", trends.NeedsAttention[0].Specialty)
}

func TestTrendIndicator(t *testing.T) {
	assert.Equal(t, "↑ Improving", trendIndicator(70))
	assert.Equal(t, "→ Stable", trendIndicator(50))
	assert.Equal(t, "↓ Declining", trendIndicator(49.9))
}

// ==========================
// IdentifySeasonalPatterns
// ==========================

func TestHandler_IdentifySeasonalPatterns(t *testing.T) {
	handler := createTestHandler(t)

	patterns := handler.IdentifySeasonalPatterns()
	require.Len(t, patterns.MonthlyTrends, 12)

	for _, trend := range patterns.MonthlyTrends {
		assert.GreaterOrEqual(t, trend.AverageQuality, 0.0)
		assert.LessOrEqual(t, trend.AverageQuality, 100.0)
		assert.GreaterOrEqual(t, trend.ProvidersValidated, 150)
		assert.LessOrEqual(t, trend.ProvidersValidated, 250)
	}

	assert.Equal(t, "Jan", patterns.MonthlyTrends[0].Month)
	assert.Equal(t, "Dec", patterns.MonthlyTrends[11].Month)
	assert.Equal(t, []string{"July", "August"}, patterns.LowMonths)
}

func TestHandler_IdentifySeasonalPatterns_Deterministic(t *testing.T) {
	p1 := createTestHandler(t).IdentifySeasonalPatterns()
	p2 := createTestHandler(t).IdentifySeasonalPatterns()
	assert.Equal(t, p1.MonthlyTrends, p2.MonthlyTrends)
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{Results: createBatch()})
	require.NoError(t, err)
	require.NotNil(t, output)

	r := output.Report
	assert.Equal(t, "Provider Data Quality Trend Analysis", r.ReportTitle)
	assert.NotEmpty(t, r.GeneratedAt)
	assert.NotEmpty(t, r.KeyInsights)
	assert.Contains(t, r.KeyInsights[0], "TX")

	require.NotEmpty(t, r.Recommendations)
	assert.Equal(t, "High", r.Recommendations[0].Priority)
	assert.Contains(t, r.Recommendations[0].Action, "TX")
}

func TestHandler_Execute_EmptyBatch(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Empty(t, output.Report.GeographicAnalysis.ByState)
	assert.Empty(t, output.Report.KeyInsights)
	assert.Empty(t, output.Report.Recommendations)
	assert.Len(t, output.Report.SeasonalPatterns.MonthlyTrends, 12)
}
