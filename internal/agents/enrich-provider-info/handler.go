// internal/agents/enrich-provider-info/handler.go
package enrichproviderinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"time"

	"provider-validation/internal/common/logger"
	"provider-validation/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "enrich-provider-info"

	dataSourcesChecked = 4
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
		h.failJob(client, job, "ENRICHMENT_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := input.Provider

	result := models.EnrichmentResult{
		ProviderID:         p.ProviderID,
		WebsiteData:        h.searchProviderWebsite(p),
		OnlineProfiles:     h.searchOnlineProfiles(p),
		HospitalData:       h.searchHospitalAffiliations(p),
		CoverageAnalysis:   h.checkNetworkCoverage(p),
		DataSourcesChecked: dataSourcesChecked,
	}

	// Confidence reflects how many sources produced usable data.
	factors := make([]float64, 0, dataSourcesChecked)
	if result.WebsiteData.WebsiteFound {
		factors = append(factors, 0.90)
	} else {
		factors = append(factors, 0.50)
	}
	if result.OnlineProfiles.HealthgradesFound {
		factors = append(factors, 0.85)
	} else {
		factors = append(factors, 0.60)
	}
	if len(result.HospitalData.VerifiedAffiliations) > 0 {
		factors = append(factors, 0.88)
	} else {
		factors = append(factors, 0.55)
	}
	factors = append(factors, 0.75) // coverage analysis always runs

	sum := 0.0
	for _, f := range factors {
		sum += f
	}
	result.EnrichmentConfidence = sum / float64(len(factors))

	return &Output{Enrichment: result}, nil
}

// searchProviderWebsite simulates scraping the practice website.
func (h *Handler) searchProviderWebsite(p models.Provider) models.WebsiteData {
	data := models.WebsiteData{
		WebsiteFound:        h.rng.Intn(4) != 3, // found three times out of four
		PracticeName:        fmt.Sprintf("%s %s Practice", p.LastName, p.Specialty),
		OfficeHours:         "Mon-Fri 9AM-5PM",
		TelehealthAvailable: h.rng.Intn(2) == 0,
		UpdatedSpecialties:  []string{},
	}

	if data.WebsiteFound {
		if h.rng.Float64() > 0.5 {
			data.AdditionalPhone = fmt.Sprintf("(%d) %d-%d",
				200+h.rng.Intn(800), 200+h.rng.Intn(800), 1000+h.rng.Intn(9000))
		}
		if h.rng.Float64() > 0.7 {
			data.UpdatedSpecialties = []string{
				p.Specialty,
				fmt.Sprintf("%s - Advanced Care", p.Specialty),
			}
		}
	}

	return data
}

// searchOnlineProfiles simulates professional profile lookups.
func (h *Handler) searchOnlineProfiles(p models.Provider) models.OnlineProfiles {
	profiles := models.OnlineProfiles{
		HealthgradesFound:        h.rng.Intn(3) != 2, // found two times out of three
		DoximityFound:            h.rng.Intn(2) == 0,
		PatientReviewsCount:      5 + h.rng.Intn(146),
		AverageRating:            math.Round((3.5+h.rng.Float64()*1.5)*10) / 10,
		EducationVerified:        h.rng.Intn(4) != 3,
		AdditionalCertifications: []string{},
	}

	if profiles.HealthgradesFound && h.rng.Float64() > 0.6 {
		profiles.AdditionalCertifications = []string{
			"Board Certified",
			fmt.Sprintf("Fellow of American College of %s", p.Specialty),
		}
	}

	return profiles
}

// searchHospitalAffiliations simulates affiliation verification.
func (h *Handler) searchHospitalAffiliations(p models.Provider) models.HospitalData {
	data := models.HospitalData{
		VerifiedAffiliations:   []models.Affiliation{},
		AdditionalAffiliations: []models.Affiliation{},
	}

	privileges := []string{"Full", "Courtesy", "Consulting"}
	for _, hospital := range p.HospitalAffiliations {
		if h.rng.Float64() > 0.2 { // 80% verification rate
			data.VerifiedAffiliations = append(data.VerifiedAffiliations, models.Affiliation{
				Name:       hospital,
				Status:     "Verified",
				Privileges: privileges[h.rng.Intn(len(privileges))],
			})
		}
	}

	if h.rng.Float64() > 0.5 {
		data.AdditionalAffiliations = append(data.AdditionalAffiliations, models.Affiliation{
			Name:       fmt.Sprintf("Additional Hospital %d", 1+h.rng.Intn(5)),
			Status:     "Found",
			Privileges: "Unknown",
		})
	}

	if len(data.VerifiedAffiliations) > 0 {
		data.PrimaryHospital = data.VerifiedAffiliations[0].Name
	}

	return data
}

// checkNetworkCoverage simulates geographic and specialty coverage analysis.
func (h *Handler) checkNetworkCoverage(p models.Provider) models.CoverageAnalysis {
	coverage := models.CoverageAnalysis{
		GeographicCoverage: "Urban",
		SpecialtyDemand:    []string{"High", "Medium", "Low"}[h.rng.Intn(3)],
	}
	if h.rng.Float64() <= 0.3 {
		coverage.GeographicCoverage = "Rural"
	}

	if coverage.SpecialtyDemand == "High" && h.rng.Float64() > 0.6 {
		coverage.NetworkGapAnalysis = fmt.Sprintf("High demand for %s in %s", p.Specialty, p.City)
	}

	return coverage
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
