// internal/agents/validate-provider-data/handler.go
package validateproviderdata

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"provider-validation/internal/common/logger"
	"provider-validation/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-provider-data"

	// Overall confidence below this, or more than one issue, routes the
	// provider to manual review.
	reviewConfidenceThreshold = 0.70
)

type Handler struct {
	config *Config
	rng    *rand.Rand
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Handler{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "PROVIDER_VALIDATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := input.Provider

	result := models.ValidationResult{
		ProviderID:        p.ProviderID,
		PhoneValidation:   h.ValidatePhone(p.Phone),
		AddressValidation: h.ValidateAddress(p.Address, p.City, p.State, p.ZipCode),
		NPIValidation:     h.ValidateNPI(p.NPI),
		LicenseValidation: h.ValidateLicense(p.LicenseNumber, p.State, p.LicenseStatus),
	}

	confidences := []float64{
		result.PhoneValidation.Confidence,
		result.AddressValidation.Confidence,
		result.NPIValidation.Confidence,
		result.LicenseValidation.Confidence,
	}
	sum := 0.0
	for _, c := range confidences {
		sum += c
	}
	result.OverallConfidence = sum / float64(len(confidences))

	issues := []string{}
	for _, fv := range []models.FieldValidation{
		result.PhoneValidation,
		result.AddressValidation,
		result.NPIValidation,
		result.LicenseValidation,
	} {
		if fv.Issue != "" {
			issues = append(issues, fv.Issue)
		}
	}
	result.IssuesFound = issues
	result.NeedsManualReview = result.OverallConfidence < reviewConfidenceThreshold || len(issues) > 1

	return &Output{Validation: result}, nil
}

// ValidatePhone checks phone number format and flags placeholders.
func (h *Handler) ValidatePhone(phone string) models.FieldValidation {
	digits := digitsOnly(phone)

	if len(digits) != 10 {
		return models.FieldValidation{
			Valid: false,
			Issue: "Invalid phone format",
		}
	}

	if phone == "(000) 000-0000" || digits == "0000000000" {
		return models.FieldValidation{
			Valid: false,
			Issue: "Placeholder phone number",
		}
	}

	// Stand-in for carrier/public-source checks.
	return models.FieldValidation{
		Valid:          true,
		Confidence:     h.uniform(0.75, 0.98),
		CorrectedValue: phone,
	}
}

// ValidateAddress checks the mailing address and flags placeholders.
func (h *Handler) ValidateAddress(address, city, state, zipCode string) models.FieldValidation {
	if strings.Contains(address, "Old Address") || strings.Contains(address, "123 Main") {
		return models.FieldValidation{
			Valid: false,
			Issue: "Placeholder or outdated address",
		}
	}

	// Stand-in for geocoding verification.
	return models.FieldValidation{
		Valid:          true,
		Confidence:     h.uniform(0.70, 0.95),
		CorrectedValue: fmt.Sprintf("%s, %s, %s %s", address, city, state, zipCode),
	}
}

// ValidateNPI checks NPI format and simulates a registry lookup.
func (h *Handler) ValidateNPI(npi string) models.FieldValidation {
	if len(npi) != 10 || digitsOnly(npi) != npi {
		return models.FieldValidation{
			Valid: false,
			Issue: "Invalid NPI format",
		}
	}

	// Stand-in for the CMS NPI Registry API
	// (https://npiregistry.cms.hhs.gov/api/?number={npi}&version=2.1).
	return models.FieldValidation{
		Valid:      true,
		Confidence: h.uniform(0.90, 0.99),
		Data: map[string]any{
			"npi":              npi,
			"enumeration_type": "Individual",
			"status":           "Active",
			"name_match":       h.rng.Intn(2) == 0,
		},
	}
}

// ValidateLicense checks the medical license against its recorded status.
func (h *Handler) ValidateLicense(licenseNumber, state, licenseStatus string) models.FieldValidation {
	if licenseStatus == "Unknown" {
		return models.FieldValidation{
			Valid: false,
			Issue: "License status unknown",
		}
	}

	// Stand-in for state medical board lookups.
	return models.FieldValidation{
		Valid:      true,
		Confidence: h.uniform(0.80, 0.95),
		Data: map[string]any{
			"license_number": licenseNumber,
			"state":          state,
			"status":         "Active",
			"verified":       true,
		},
	}
}

func (h *Handler) uniform(low, high float64) float64 {
	return low + h.rng.Float64()*(high-low)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
