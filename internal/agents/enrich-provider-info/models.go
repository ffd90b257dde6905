// internal/agents/enrich-provider-info/models.go
package enrichproviderinfo

import "provider-validation/internal/models"

type Input struct {
	Provider models.Provider `json:"provider"`
}

type Output struct {
	Enrichment models.EnrichmentResult `json:"enrichment"`
}
