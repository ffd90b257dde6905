// internal/agents/enrich-provider-info/handler_test.go
package enrichproviderinfo

import (
	"context"
	"testing"
	"time"

	"provider-validation/internal/common/logger"
	"provider-validation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestHandler(t *testing.T, seed int64) *Handler {
	return NewHandler(&Config{Timeout: 10 * time.Second, Seed: seed}, logger.NewTestLogger(t))
}

func createProvider() models.Provider {
	return models.Provider{
		ProviderID:           "PRV00001",
		FirstName:            "John",
		LastName:             "Smith",
		Specialty:            "Cardiology",
		City:                 "Springfield",
		HospitalAffiliations: []string{"Springfield General", "St. Mary Medical Center"},
	}
}

func TestHandler_Execute(t *testing.T) {
	handler := createTestHandler(t, 42)

	output, err := handler.Execute(context.Background(), &Input{Provider: createProvider()})
	require.NoError(t, err)
	require.NotNil(t, output)

	e := output.Enrichment
	assert.Equal(t, "PRV00001", e.ProviderID)
	assert.Equal(t, 4, e.DataSourcesChecked)
	assert.Equal(t, "Smith Cardiology Practice", e.WebsiteData.PracticeName)

	// Confidence is a mean of four factors, each in [0.50, 0.90].
	assert.GreaterOrEqual(t, e.EnrichmentConfidence, 0.50)
	assert.LessOrEqual(t, e.EnrichmentConfidence, 0.90)

	assert.GreaterOrEqual(t, e.OnlineProfiles.PatientReviewsCount, 5)
	assert.LessOrEqual(t, e.OnlineProfiles.PatientReviewsCount, 150)
	assert.GreaterOrEqual(t, e.OnlineProfiles.AverageRating, 3.5)
	assert.LessOrEqual(t, e.OnlineProfiles.AverageRating, 5.0)

	// Verified affiliations are a subset of what the record claims.
	assert.LessOrEqual(t, len(e.HospitalData.VerifiedAffiliations), 2)
	for _, aff := range e.HospitalData.VerifiedAffiliations {
		assert.Contains(t, []string{"Springfield General", "St. Mary Medical Center"}, aff.Name)
		assert.Equal(t, "Verified", aff.Status)
	}
	if len(e.HospitalData.VerifiedAffiliations) > 0 {
		assert.Equal(t, e.HospitalData.VerifiedAffiliations[0].Name, e.HospitalData.PrimaryHospital)
	}
}

func TestHandler_Execute_Deterministic(t *testing.T) {
	out1, err := createTestHandler(t, 7).Execute(context.Background(), &Input{Provider: createProvider()})
	require.NoError(t, err)

	out2, err := createTestHandler(t, 7).Execute(context.Background(), &Input{Provider: createProvider()})
	require.NoError(t, err)

	assert.Equal(t, out1.Enrichment, out2.Enrichment)
}

func TestHandler_Execute_NoAffiliations(t *testing.T) {
	handler := createTestHandler(t, 42)

	provider := createProvider()
	provider.HospitalAffiliations = nil

	output, err := handler.Execute(context.Background(), &Input{Provider: provider})
	require.NoError(t, err)

	e := output.Enrichment
	assert.Empty(t, e.HospitalData.VerifiedAffiliations)
	assert.Empty(t, e.HospitalData.PrimaryHospital)
}
