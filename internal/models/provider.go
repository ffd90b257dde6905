// Package models holds the shared data types exchanged between agents,
// the pipeline, storage, and the dashboard API.
package models

import (
	"fmt"
	"strings"
)

// Provider is a single healthcare practitioner's directory entry.
type Provider struct {
	ProviderID           string   `json:"provider_id"`
	NPI                  string   `json:"npi"`
	FirstName            string   `json:"first_name"`
	LastName             string   `json:"last_name"`
	Specialty            string   `json:"specialty"`
	SubSpecialty         string   `json:"sub_specialty"`
	Phone                string   `json:"phone"`
	Email                string   `json:"email"`
	Address              string   `json:"address"`
	City                 string   `json:"city"`
	State                string   `json:"state"`
	ZipCode              string   `json:"zip_code"`
	LicenseNumber        string   `json:"license_number"`
	LicenseStatus        string   `json:"license_status"`
	LicenseExpiry        string   `json:"license_expiry"`
	BoardCertified       bool     `json:"board_certified"`
	YearsExperience      int      `json:"years_experience"`
	MedicalSchool        string   `json:"medical_school"`
	AcceptingNewPatients bool     `json:"accepting_new_patients"`
	Languages            []string `json:"languages"`
	HospitalAffiliations []string `json:"hospital_affiliations"`
	InsuranceAccepted    []string `json:"insurance_accepted"`

	// Pipeline-managed fields, zero until the provider has been processed.
	DataQualityScore  float64  `json:"data_quality_score"`
	LastVerified      string   `json:"last_verified"`
	ValidationStatus  string   `json:"validation_status"`
	ConfidenceScore   float64  `json:"confidence_score"`
	NeedsManualReview bool     `json:"needs_manual_review"`
	IssuesFound       []string `json:"issues_found"`
}

// FullName returns the provider's display name.
func (p *Provider) FullName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", p.FirstName, p.LastName))
}

// FormattedAddress returns the full mailing address for display.
func (p *Provider) FormattedAddress() string {
	return fmt.Sprintf("%s, %s, %s %s", p.Address, p.City, p.State, p.ZipCode)
}

// ToRecord converts the provider into the loosely-typed record shape
// consumed by the duplicate detection engine.
func (p *Provider) ToRecord() map[string]any {
	return map[string]any{
		"provider_id":    p.ProviderID,
		"npi":            p.NPI,
		"first_name":     p.FirstName,
		"last_name":      p.LastName,
		"specialty":      p.Specialty,
		"phone":          p.Phone,
		"address":        p.Address,
		"city":           p.City,
		"state":          p.State,
		"zip_code":       p.ZipCode,
		"license_number": p.LicenseNumber,
	}
}
