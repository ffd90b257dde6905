// cmd/tools/dataset-generator/main.go

// dataset-generator produces a synthetic provider roster with seeded
// data quality issues, for demos and load testing.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"provider-validation/internal/models"
)

var specialties = []string{
	"Cardiology", "Dermatology", "Endocrinology", "Family Medicine",
	"Gastroenterology", "Internal Medicine", "Neurology", "Obstetrics/Gynecology",
	"Oncology", "Ophthalmology", "Orthopedic Surgery", "Pediatrics",
	"Psychiatry", "Radiology", "Surgery", "Urology",
}

var states = []string{"CA", "NY", "TX", "FL", "IL", "PA", "OH", "GA", "NC", "MI"}

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
	"Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan",
	"Joseph", "Jessica", "Thomas", "Sarah", "Carlos", "Maria", "Wei", "Priya",
	"Ahmed", "Fatima", "Dmitri", "Elena",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Chen", "Patel",
	"Kim", "Nguyen", "Ali", "Ivanov", "Okafor", "Tanaka",
}

var cities = []string{
	"Springfield", "Riverside", "Franklin", "Greenville", "Bristol",
	"Clinton", "Fairview", "Salem", "Madison", "Georgetown", "Arlington",
	"Ashland", "Dover", "Oxford", "Jackson", "Milton",
}

var streetNames = []string{
	"Main St", "Oak Ave", "Maple Dr", "Cedar Ln", "Elm St", "Park Ave",
	"Washington Blvd", "Lake Dr", "Hill Rd", "Church St", "Medical Plaza",
	"Health Way", "Wellness Ct",
}

var hospitalNames = []string{
	"St. Mary's", "General", "Memorial", "Regional Medical", "University",
	"Community", "Mercy", "Sacred Heart", "Baptist", "Methodist",
}

var medicalSchools = []string{
	"State University School of Medicine", "Metropolitan Medical College",
	"Coastal University School of Medicine", "Midwest Medical School",
	"Northern Institute of Medicine", "Southern Medical University",
}

var languagePool = []string{"English", "Spanish", "Mandarin", "French", "German"}

var insurancePool = []string{
	"Medicare", "Medicaid", "Blue Cross", "Aetna", "Cigna", "UnitedHealthcare",
}

type generator struct {
	rng *rand.Rand
}

func (g *generator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}

// sample returns k distinct entries from options.
func (g *generator) sample(options []string, k int) []string {
	indices := g.rng.Perm(len(options))[:k]
	out := make([]string, 0, k)
	for _, idx := range indices {
		out = append(out, options[idx])
	}
	return out
}

func (g *generator) npi() string {
	return fmt.Sprintf("1%09d", 100000000+g.rng.Intn(900000000))
}

func (g *generator) phone() string {
	return fmt.Sprintf("(%03d) %03d-%04d",
		200+g.rng.Intn(800), 200+g.rng.Intn(800), g.rng.Intn(10000))
}

func (g *generator) provider(id int) models.Provider {
	// Seed intentional data quality issues so downstream validation has
	// something to find: 40% bad phones, 30% stale addresses, 20%
	// unverifiable credentials.
	hasPhoneIssue := g.rng.Float64() < 0.4
	hasAddressIssue := g.rng.Float64() < 0.3
	hasCredentialIssue := g.rng.Float64() < 0.2

	state := g.pick(states)
	firstName := g.pick(firstNames)
	lastName := g.pick(lastNames)

	phone := g.phone()
	if hasPhoneIssue {
		phone = "(000) 000-0000"
	}

	address := fmt.Sprintf("%d %s", 100+g.rng.Intn(9900), g.pick(streetNames))
	if hasAddressIssue {
		address = "123 Old Address St"
	}

	licenseStatus := "Active"
	if hasCredentialIssue {
		licenseStatus = "Unknown"
	}

	affiliations := make([]string, 1+g.rng.Intn(3))
	for i := range affiliations {
		affiliations[i] = g.pick(hospitalNames) + " Hospital"
	}

	now := time.Now()

	return models.Provider{
		ProviderID:           fmt.Sprintf("PRV%05d", id),
		NPI:                  g.npi(),
		FirstName:            firstName,
		LastName:             lastName,
		Specialty:            g.pick(specialties),
		SubSpecialty:         g.pick([]string{"General", "Specialized", "Interventional"}),
		Phone:                phone,
		Email:                fmt.Sprintf("%s.%s@example.com", firstName, lastName),
		Address:              address,
		City:                 g.pick(cities),
		State:                state,
		ZipCode:              fmt.Sprintf("%05d", 10000+g.rng.Intn(89999)),
		LicenseNumber:        fmt.Sprintf("%s%06d", state, 100000+g.rng.Intn(900000)),
		LicenseStatus:        licenseStatus,
		LicenseExpiry:        now.AddDate(0, 0, 30+g.rng.Intn(701)).Format("2006-01-02"),
		BoardCertified:       g.rng.Intn(4) != 0,
		YearsExperience:      3 + g.rng.Intn(38),
		MedicalSchool:        g.pick(medicalSchools),
		AcceptingNewPatients: g.rng.Intn(3) != 0,
		Languages:            g.sample(languagePool, 1+g.rng.Intn(3)),
		HospitalAffiliations: affiliations,
		InsuranceAccepted:    g.sample(insurancePool, 2+g.rng.Intn(4)),
		DataQualityScore:     0,
		LastVerified:         now.AddDate(0, 0, -(30 + g.rng.Intn(336))).Format("2006-01-02"),
		ValidationStatus:     "Pending",
		ConfidenceScore:      0,
		NeedsManualReview:    false,
		IssuesFound:          []string{},
	}
}

func main() {
	count := flag.Int("count", 200, "number of provider records to generate")
	out := flag.String("out", "data/providers.json", "output file path")
	seed := flag.Int64("seed", 0, "random seed (0 seeds from the clock)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	g := &generator{rng: rand.New(rand.NewSource(*seed))}

	providers := make([]models.Provider, 0, *count)
	for i := 1; i <= *count; i++ {
		providers = append(providers, g.provider(i))
	}

	data, err := json.MarshalIndent(providers, "", "  ")
	if err != nil {
		fmt.Printf("Error encoding providers: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		fmt.Printf("Error writing output file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d provider records\n", *count)
	fmt.Printf("Data saved to: %s\n", *out)

	var phoneIssues, addressIssues, credentialIssues int
	for _, p := range providers {
		if p.Phone == "(000) 000-0000" {
			phoneIssues++
		}
		if p.Address == "123 Old Address St" {
			addressIssues++
		}
		if p.LicenseStatus == "Unknown" {
			credentialIssues++
		}
	}

	total := float64(len(providers))
	fmt.Println("\nData Quality Issues Introduced:")
	fmt.Printf("  - Phone Issues: %d (%.1f%%)\n", phoneIssues, float64(phoneIssues)/total*100)
	fmt.Printf("  - Address Issues: %d (%.1f%%)\n", addressIssues, float64(addressIssues)/total*100)
	fmt.Printf("  - Credential Issues: %d (%.1f%%)\n", credentialIssues, float64(credentialIssues)/total*100)
}
