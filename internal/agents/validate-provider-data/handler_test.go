// internal/agents/validate-provider-data/handler_test.go
package validateproviderdata

import (
	"context"
	"testing"
	"time"

	"provider-validation/internal/common/logger"
	"provider-validation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Seed:    42,
	}
}

func createTestHandler(t *testing.T, config *Config) *Handler {
	if config == nil {
		config = createTestConfig()
	}
	return NewHandler(config, logger.NewTestLogger(t))
}

func createProvider() models.Provider {
	return models.Provider{
		ProviderID:    "PRV00001",
		NPI:           "1234567890",
		FirstName:     "John",
		LastName:      "Smith",
		Specialty:     "Cardiology",
		Phone:         "(555) 123-4567",
		Address:       "100 Medical Plaza",
		City:          "Springfield",
		State:         "IL",
		ZipCode:       "62701",
		LicenseNumber: "MD12345",
		LicenseStatus: "Active",
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_CleanProvider(t *testing.T) {
	handler := createTestHandler(t, nil)
	ctx := context.Background()

	output, err := handler.Execute(ctx, &Input{Provider: createProvider()})
	require.NoError(t, err)
	require.NotNil(t, output)

	v := output.Validation
	assert.Equal(t, "PRV00001", v.ProviderID)
	assert.True(t, v.PhoneValidation.Valid)
	assert.True(t, v.AddressValidation.Valid)
	assert.True(t, v.NPIValidation.Valid)
	assert.True(t, v.LicenseValidation.Valid)
	assert.Empty(t, v.IssuesFound)
	assert.False(t, v.NeedsManualReview)
	assert.GreaterOrEqual(t, v.OverallConfidence, 0.70)
	assert.LessOrEqual(t, v.OverallConfidence, 1.0)
}

func TestHandler_Execute_ProblemProvider(t *testing.T) {
	handler := createTestHandler(t, nil)
	ctx := context.Background()

	provider := createProvider()
	provider.Phone = "(000) 000-0000"
	provider.Address = "Old Address 5"
	provider.LicenseStatus = "Unknown"

	output, err := handler.Execute(ctx, &Input{Provider: provider})
	require.NoError(t, err)

	v := output.Validation
	assert.False(t, v.PhoneValidation.Valid)
	assert.False(t, v.AddressValidation.Valid)
	assert.False(t, v.LicenseValidation.Valid)
	assert.Contains(t, v.IssuesFound, "Placeholder phone number")
	assert.Contains(t, v.IssuesFound, "Placeholder or outdated address")
	assert.Contains(t, v.IssuesFound, "License status unknown")
	assert.True(t, v.NeedsManualReview)
	assert.Less(t, v.OverallConfidence, 0.70)
}

func TestHandler_Execute_Deterministic(t *testing.T) {
	// Same seed, same provider, same confidences.
	out1, err := createTestHandler(t, &Config{Timeout: time.Second, Seed: 7}).
		Execute(context.Background(), &Input{Provider: createProvider()})
	require.NoError(t, err)

	out2, err := createTestHandler(t, &Config{Timeout: time.Second, Seed: 7}).
		Execute(context.Background(), &Input{Provider: createProvider()})
	require.NoError(t, err)

	assert.Equal(t, out1.Validation.OverallConfidence, out2.Validation.OverallConfidence)
}

// ==========================
// Field Validation Tests
// ==========================

func TestHandler_ValidatePhone(t *testing.T) {
	handler := createTestHandler(t, nil)

	tests := []struct {
		name          string
		phone         string
		expectedValid bool
		expectedIssue string
	}{
		{
			name:          "valid formatted number",
			phone:         "(555) 123-4567",
			expectedValid: true,
		},
		{
			name:          "too short",
			phone:         "123-4567",
			expectedValid: false,
			expectedIssue: "Invalid phone format",
		},
		{
			name:          "too long",
			phone:         "1-555-123-4567",
			expectedValid: false,
			expectedIssue: "Invalid phone format",
		},
		{
			name:          "placeholder",
			phone:         "(000) 000-0000",
			expectedValid: false,
			expectedIssue: "Placeholder phone number",
		},
		{
			name:          "empty",
			phone:         "",
			expectedValid: false,
			expectedIssue: "Invalid phone format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := handler.ValidatePhone(tt.phone)
			assert.Equal(t, tt.expectedValid, result.Valid)
			assert.Equal(t, tt.expectedIssue, result.Issue)
			if tt.expectedValid {
				assert.GreaterOrEqual(t, result.Confidence, 0.75)
				assert.LessOrEqual(t, result.Confidence, 0.98)
			} else {
				assert.Zero(t, result.Confidence)
			}
		})
	}
}

func TestHandler_ValidateNPI(t *testing.T) {
	handler := createTestHandler(t, nil)

	tests := []struct {
		name          string
		npi           string
		expectedValid bool
	}{
		{name: "valid ten digits", npi: "1234567890", expectedValid: true},
		{name: "too short", npi: "12345", expectedValid: false},
		{name: "non-numeric", npi: "12345abcde", expectedValid: false},
		{name: "empty", npi: "", expectedValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := handler.ValidateNPI(tt.npi)
			assert.Equal(t, tt.expectedValid, result.Valid)
			if tt.expectedValid {
				assert.GreaterOrEqual(t, result.Confidence, 0.90)
				assert.Equal(t, "Active", result.Data["status"])
			} else {
				assert.Equal(t, "Invalid NPI format", result.Issue)
			}
		})
	}
}

func TestHandler_ValidateLicense(t *testing.T) {
	handler := createTestHandler(t, nil)

	t.Run("active license", func(t *testing.T) {
		result := handler.ValidateLicense("MD12345", "IL", "Active")
		assert.True(t, result.Valid)
		assert.GreaterOrEqual(t, result.Confidence, 0.80)
	})

	t.Run("unknown status", func(t *testing.T) {
		result := handler.ValidateLicense("MD12345", "IL", "Unknown")
		assert.False(t, result.Valid)
		assert.Equal(t, "License status unknown", result.Issue)
	})
}

func TestHandler_ValidateAddress(t *testing.T) {
	handler := createTestHandler(t, nil)

	t.Run("normal address", func(t *testing.T) {
		result := handler.ValidateAddress("100 Medical Plaza", "Springfield", "IL", "62701")
		assert.True(t, result.Valid)
		assert.Equal(t, "100 Medical Plaza, Springfield, IL 62701", result.CorrectedValue)
	})

	t.Run("placeholder address", func(t *testing.T) {
		result := handler.ValidateAddress("123 Main St", "Springfield", "IL", "62701")
		assert.False(t, result.Valid)
		assert.Equal(t, "Placeholder or outdated address", result.Issue)
	})
}
