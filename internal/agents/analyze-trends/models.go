// internal/agents/analyze-trends/models.go
package analyzetrends

import "provider-validation/internal/models"

type Input struct {
	Results []models.ProviderResult `json:"results"`
}

type Output struct {
	Report TrendReport `json:"report"`
}

// StateAnalysis aggregates quality metrics for one state.
type StateAnalysis struct {
	State               string  `json:"state,omitempty"`
	TotalProviders      int     `json:"total_providers"`
	AverageQualityScore float64 `json:"average_quality_score"`
	IssuesPerProvider   float64 `json:"issues_per_provider"`
	CriticalPercentage  float64 `json:"critical_percentage"`
	TopSpecialty        string  `json:"top_specialty"`
	RiskLevel           string  `json:"risk_level"`
}

// GeographicAnalysis groups state-level metrics and risk rankings.
type GeographicAnalysis struct {
	ByState           map[string]StateAnalysis `json:"by_state"`
	HighestRiskStates []StateAnalysis          `json:"highest_risk_states"`
	LowestRiskStates  []StateAnalysis          `json:"lowest_risk_states"`
	Timestamp         string                   `json:"timestamp"`
}

// SpecialtyAnalysis aggregates quality metrics for one specialty.
type SpecialtyAnalysis struct {
	Specialty           string              `json:"specialty,omitempty"`
	ProviderCount       int                 `json:"provider_count"`
	AverageQualityScore float64             `json:"average_quality_score"`
	TopIssues           []models.IssueCount `json:"top_issues"`
	StatusDistribution  map[string]int      `json:"status_distribution"`
	TrendIndicator      string              `json:"trend_indicator"`
}

// SpecialtyTrends groups specialty-level metrics and rankings.
type SpecialtyTrends struct {
	BySpecialty    map[string]SpecialtyAnalysis `json:"by_specialty"`
	BestPerforming []SpecialtyAnalysis          `json:"best_performing"`
	NeedsAttention []SpecialtyAnalysis          `json:"needs_attention"`
	Timestamp      string                       `json:"timestamp"`
}

// MonthlyTrend is one point in the simulated seasonal series.
type MonthlyTrend struct {
	Month              string  `json:"month"`
	AverageQuality     float64 `json:"average_quality"`
	ProvidersValidated int     `json:"providers_validated"`
}

// SeasonalPatterns holds the simulated time-based quality series.
type SeasonalPatterns struct {
	MonthlyTrends  []MonthlyTrend `json:"monthly_trends"`
	PeakMonths     []string       `json:"peak_months"`
	LowMonths      []string       `json:"low_months"`
	Recommendation string         `json:"recommendation"`
	Timestamp      string         `json:"timestamp"`
}

// TrendRecommendation is one actionable item from the trend analysis.
type TrendRecommendation struct {
	Priority string `json:"priority"`
	Category string `json:"category"`
	Action   string `json:"action"`
	Impact   string `json:"impact"`
}

// TrendReport is the full trend analysis output.
type TrendReport struct {
	ReportTitle        string                `json:"report_title"`
	GeneratedAt        string                `json:"generated_at"`
	GeographicAnalysis GeographicAnalysis    `json:"geographic_analysis"`
	SpecialtyAnalysis  SpecialtyTrends       `json:"specialty_analysis"`
	SeasonalPatterns   SeasonalPatterns      `json:"seasonal_patterns"`
	KeyInsights        []string              `json:"key_insights"`
	Recommendations    []TrendRecommendation `json:"recommendations"`
}
