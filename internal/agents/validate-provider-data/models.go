// internal/agents/validate-provider-data/models.go
package validateproviderdata

import "provider-validation/internal/models"

type Input struct {
	Provider models.Provider `json:"provider"`
}

// Output is the full validation result for one provider.
type Output struct {
	Validation models.ValidationResult `json:"validation"`
}
