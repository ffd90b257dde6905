package models

// FieldValidation is the outcome of validating a single provider field.
type FieldValidation struct {
	Valid          bool           `json:"valid"`
	Confidence     float64        `json:"confidence"`
	Issue          string         `json:"issue,omitempty"`
	CorrectedValue string         `json:"corrected_value,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

// ValidationResult aggregates per-field validations for one provider.
type ValidationResult struct {
	ProviderID         string          `json:"provider_id"`
	PhoneValidation    FieldValidation `json:"phone_validation"`
	AddressValidation  FieldValidation `json:"address_validation"`
	NPIValidation      FieldValidation `json:"npi_validation"`
	LicenseValidation  FieldValidation `json:"license_validation"`
	OverallConfidence  float64         `json:"overall_confidence"`
	IssuesFound        []string        `json:"issues_found"`
	NeedsManualReview  bool            `json:"needs_manual_review"`
}

// WebsiteData holds simulated practice-website findings.
type WebsiteData struct {
	WebsiteFound         bool     `json:"website_found"`
	PracticeName         string   `json:"practice_name"`
	AdditionalPhone      string   `json:"additional_phone,omitempty"`
	OfficeHours          string   `json:"office_hours"`
	TelehealthAvailable  bool     `json:"telehealth_available"`
	UpdatedSpecialties   []string `json:"updated_specialties"`
}

// OnlineProfiles holds simulated professional-profile findings.
type OnlineProfiles struct {
	HealthgradesFound        bool     `json:"healthgrades_found"`
	DoximityFound            bool     `json:"doximity_found"`
	PatientReviewsCount      int      `json:"patient_reviews_count"`
	AverageRating            float64  `json:"average_rating"`
	EducationVerified        bool     `json:"education_verified"`
	AdditionalCertifications []string `json:"additional_certifications"`
}

// Affiliation is a verified or discovered hospital affiliation.
type Affiliation struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Privileges string `json:"privileges"`
}

// HospitalData holds affiliation verification results.
type HospitalData struct {
	VerifiedAffiliations   []Affiliation `json:"verified_affiliations"`
	AdditionalAffiliations []Affiliation `json:"additional_affiliations"`
	PrimaryHospital        string        `json:"primary_hospital,omitempty"`
}

// CoverageAnalysis holds geographic and specialty coverage findings.
type CoverageAnalysis struct {
	GeographicCoverage string `json:"geographic_coverage"`
	SpecialtyDemand    string `json:"specialty_demand"`
	NetworkGapAnalysis string `json:"network_gap_analysis,omitempty"`
}

// EnrichmentResult aggregates public-source findings for one provider.
type EnrichmentResult struct {
	ProviderID           string           `json:"provider_id"`
	WebsiteData          WebsiteData      `json:"website_data"`
	OnlineProfiles       OnlineProfiles   `json:"online_profiles"`
	HospitalData         HospitalData     `json:"hospital_data"`
	CoverageAnalysis     CoverageAnalysis `json:"coverage_analysis"`
	EnrichmentConfidence float64          `json:"enrichment_confidence"`
	DataSourcesChecked   int              `json:"data_sources_checked"`
}

// Discrepancy is a cross-source inconsistency found during quality review.
type Discrepancy struct {
	Field    string `json:"field"`
	Issue    string `json:"issue"`
	Severity string `json:"severity"`
	Action   string `json:"action"`
}

// RedFlag marks potentially fraudulent or suspicious data.
type RedFlag struct {
	Type        string `json:"type"`
	Field       string `json:"field"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// ComparisonResults holds the discrepancy scan outcome.
type ComparisonResults struct {
	DiscrepanciesFound int           `json:"discrepancies_found"`
	Discrepancies      []Discrepancy `json:"discrepancies"`
}

// PriorityInfo captures manual-review prioritization for one provider.
type PriorityInfo struct {
	Priority            string   `json:"priority"`
	PriorityScore       int      `json:"priority_score"`
	EstimatedReviewTime string   `json:"estimated_review_time"`
	RecommendedActions  []string `json:"recommended_actions"`
}

// QualityResult is the comprehensive quality assessment for one provider.
type QualityResult struct {
	ProviderID           string            `json:"provider_id"`
	QualityScore         float64           `json:"quality_score"`
	ComparisonResults    ComparisonResults `json:"comparison_results"`
	RedFlags             []RedFlag         `json:"red_flags"`
	PriorityInfo         PriorityInfo      `json:"priority_info"`
	RequiresManualReview bool              `json:"requires_manual_review"`
}

// QualityMetrics bundles the three headline scores on a provider report.
type QualityMetrics struct {
	QualityScore    float64 `json:"quality_score"`
	ConfidenceScore float64 `json:"confidence_score"`
	EnrichmentScore float64 `json:"enrichment_score"`
}

// ValidationSummary gives the per-field Valid/Invalid labels for display.
type ValidationSummary struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
	NPI     string `json:"npi"`
	License string `json:"license"`
}

// EnrichmentSummary condenses enrichment findings for display.
type EnrichmentSummary struct {
	WebsiteFound         bool `json:"website_found"`
	OnlineProfilesFound  bool `json:"online_profiles_found"`
	AffiliationsVerified int  `json:"affiliations_verified"`
}

// ProviderReport is the per-provider validation report.
type ProviderReport struct {
	ProviderID           string            `json:"provider_id"`
	ProviderName         string            `json:"provider_name"`
	Specialty            string            `json:"specialty"`
	ValidationTimestamp  string            `json:"validation_timestamp"`
	OverallStatus        string            `json:"overall_status"`
	QualityMetrics       QualityMetrics    `json:"quality_metrics"`
	ValidationSummary    ValidationSummary `json:"validation_summary"`
	IssuesFound          []string          `json:"issues_found"`
	RedFlags             []RedFlag         `json:"red_flags"`
	Discrepancies        []Discrepancy     `json:"discrepancies"`
	EnrichmentSummary    EnrichmentSummary `json:"enrichment_summary"`
	Priority             string            `json:"priority"`
	RecommendedActions   []string          `json:"recommended_actions"`
	RequiresManualReview bool              `json:"requires_manual_review"`

	// Set only on review-queue projections.
	QueuePosition     int    `json:"queue_position,omitempty"`
	EstimatedWaitTime string `json:"estimated_wait_time,omitempty"`
}

// SummaryReport aggregates all provider reports from a batch run.
type SummaryReport struct {
	TotalProvidersValidated int            `json:"total_providers_validated"`
	ValidationTimestamp     string         `json:"validation_timestamp"`
	StatusDistribution      map[string]int `json:"status_distribution"`
	AverageQualityScore     float64        `json:"average_quality_score"`
	AverageConfidenceScore  float64        `json:"average_confidence_score"`
	ProvidersNeedingReview  int            `json:"providers_needing_review"`
	CriticalPriorityCount   int            `json:"critical_priority_count"`
	HighPriorityCount       int            `json:"high_priority_count"`
	ValidationSuccessRate   float64        `json:"validation_success_rate"`
}

// IssueCount is a single entry in the top-issues ranking.
type IssueCount struct {
	Issue string `json:"issue"`
	Count int    `json:"count"`
}

// DashboardData backs the web dashboard visualization.
type DashboardData struct {
	Summary             SummaryReport    `json:"summary"`
	ReviewQueue         []ProviderReport `json:"review_queue"`
	TopIssues           []IssueCount     `json:"top_issues"`
	QualityDistribution map[string]int   `json:"quality_distribution"`
}

// ProviderResult bundles everything computed for one provider.
type ProviderResult struct {
	Provider   Provider         `json:"provider"`
	Validation ValidationResult `json:"validation"`
	Enrichment EnrichmentResult `json:"enrichment"`
	Quality    QualityResult    `json:"quality"`
	Report     ProviderReport   `json:"report"`
}

// ProcessingStats summarizes a batch pipeline run.
type ProcessingStats struct {
	TotalProviders         int     `json:"total_providers"`
	ProvidersValidated     int     `json:"providers_validated"`
	ProvidersNeedingReview int     `json:"providers_needing_review"`
	ProvidersSkipped       int     `json:"providers_skipped"`
	TotalTimeSeconds       float64 `json:"total_time_seconds"`
}

// BatchResult is the top-level output of a full pipeline run.
type BatchResult struct {
	Results         []ProviderResult `json:"results"`
	Summary         SummaryReport    `json:"summary"`
	ProcessingStats ProcessingStats  `json:"processing_stats"`
	GeneratedAt     string           `json:"generated_at"`
}
