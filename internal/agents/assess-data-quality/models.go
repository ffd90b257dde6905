// internal/agents/assess-data-quality/models.go
package assessdataquality

import "provider-validation/internal/models"

type Input struct {
	Provider   models.Provider         `json:"provider"`
	Validation models.ValidationResult `json:"validation"`
	Enrichment models.EnrichmentResult `json:"enrichment"`
}

type Output struct {
	Quality models.QualityResult `json:"quality"`
}
