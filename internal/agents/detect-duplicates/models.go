// internal/agents/detect-duplicates/models.go
package detectduplicates

import (
	"provider-validation/internal/dedupe"
	"provider-validation/internal/models"
)

type Input struct {
	Providers []models.Provider `json:"providers"`
}

type Output struct {
	Report dedupe.Report `json:"report"`
}
