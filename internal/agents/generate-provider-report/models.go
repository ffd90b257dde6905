// internal/agents/generate-provider-report/models.go
package generateproviderreport

import "provider-validation/internal/models"

type Input struct {
	Provider   models.Provider         `json:"provider"`
	Validation models.ValidationResult `json:"validation"`
	Enrichment models.EnrichmentResult `json:"enrichment"`
	Quality    models.QualityResult    `json:"quality"`
}

type Output struct {
	Report models.ProviderReport `json:"report"`
}
