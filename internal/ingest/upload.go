// internal/ingest/upload.go

// Package ingest parses uploaded provider files into records and exports
// finished batch results.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"provider-validation/internal/common/errors"
	"provider-validation/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

var requiredFields = []string{"first_name", "last_name", "npi"}

// providerListSchema is the shape contract for JSON uploads. Field-level
// validation happens later in the pipeline; ingestion only enforces the
// identity fields.
const providerListSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["first_name", "last_name", "npi"],
		"properties": {
			"first_name": {"type": "string", "minLength": 1},
			"last_name": {"type": "string", "minLength": 1},
			"npi": {"type": ["string", "integer"]}
		}
	}
}`

// ParseCSV parses CSV content into provider records. Header names are
// case-insensitive with spaces treated as underscores. Rows missing any
// of the identity fields (first name, last name, NPI) are dropped.
func ParseCSV(content string) ([]models.Provider, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewUploadParseFailedError(err.Error())
	}
	if len(rows) == 0 {
		return nil, errors.NewUploadParseFailedError("csv has no header row")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = normalizeKey(h)
	}

	providers := []models.Provider{}
	for idx, row := range rows[1:] {
		record := map[string]any{}
		for i, value := range row {
			if i < len(headers) && headers[i] != "" {
				record[headers[i]] = value
			}
		}

		if provider, ok := buildProvider(record, idx+1); ok {
			providers = append(providers, provider)
		}
	}

	return providers, nil
}

// ParseJSON parses a JSON array of provider objects, validating the
// payload shape first.
func ParseJSON(content []byte) ([]models.Provider, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(providerListSchema),
		gojsonschema.NewBytesLoader(content))
	if err != nil {
		return nil, errors.NewUploadParseFailedError(err.Error())
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, errors.NewUploadSchemaFailedError(strings.Join(issues, "; "))
	}

	var rows []map[string]any
	if err := json.Unmarshal(content, &rows); err != nil {
		return nil, errors.NewUploadParseFailedError(err.Error())
	}

	providers := []models.Provider{}
	for idx, row := range rows {
		record := map[string]any{}
		for key, value := range row {
			record[normalizeKey(key)] = value
		}

		if provider, ok := buildProvider(record, idx+1); ok {
			providers = append(providers, provider)
		}
	}

	return providers, nil
}

// buildProvider normalizes a loosely-typed row into a provider record,
// applying defaults for absent optional fields. Returns false when an
// identity field is missing or blank.
func buildProvider(record map[string]any, idx int) (models.Provider, bool) {
	for _, field := range requiredFields {
		if stringValue(record[field]) == "" {
			return models.Provider{}, false
		}
	}

	providerID := stringValue(record["provider_id"])
	if providerID == "" {
		providerID = fmt.Sprintf("PRV%05d", idx)
	}

	state := strings.ToUpper(stringValue(record["state"]))
	if len(state) > 2 {
		state = state[:2]
	}

	zip := stringValue(record["zip_code"])
	if len(zip) > 5 {
		zip = zip[:5]
	}

	return models.Provider{
		ProviderID:           providerID,
		NPI:                  stringValue(record["npi"]),
		FirstName:            stringValue(record["first_name"]),
		LastName:             stringValue(record["last_name"]),
		Specialty:            stringOrDefault(record["specialty"], "General Practice"),
		SubSpecialty:         stringOrDefault(record["sub_specialty"], "General"),
		Phone:                stringValue(record["phone"]),
		Email:                stringValue(record["email"]),
		Address:              stringValue(record["address"]),
		City:                 stringValue(record["city"]),
		State:                state,
		ZipCode:              zip,
		LicenseNumber:        stringValue(record["license_number"]),
		LicenseStatus:        stringOrDefault(record["license_status"], "Unknown"),
		LicenseExpiry:        stringValue(record["license_expiry"]),
		BoardCertified:       parseBool(record["board_certified"], false),
		YearsExperience:      parseInt(record["years_experience"]),
		MedicalSchool:        stringValue(record["medical_school"]),
		AcceptingNewPatients: parseBool(record["accepting_new_patients"], true),
		Languages:            parseListOrDefault(record["languages"], []string{"English"}),
		HospitalAffiliations: parseList(record["hospital_affiliations"]),
		InsuranceAccepted:    parseList(record["insurance_accepted"]),
		LastVerified:         time.Now().Format("2006-01-02"),
		ValidationStatus:     "Pending",
		IssuesFound:          []string{},
	}, true
}

func normalizeKey(key string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(key), " ", "_"))
}

func stringValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case float64:
		// JSON numbers decode as float64; NPIs and zips are integral.
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", value))
	}
}

func stringOrDefault(v any, fallback string) string {
	if s := stringValue(v); s != "" {
		return s
	}
	return fallback
}

func parseBool(v any, fallback bool) bool {
	switch value := v.(type) {
	case nil:
		return fallback
	case bool:
		return value
	case string:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "yes", "1", "y":
			return true
		case "":
			return fallback
		default:
			return false
		}
	default:
		return fallback
	}
}

func parseInt(v any) int {
	switch value := v.(type) {
	case float64:
		return int(value)
	case int:
		return value
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func parseList(v any) []string {
	switch value := v.(type) {
	case []string:
		return value
	case []any:
		items := make([]string, 0, len(value))
		for _, item := range value {
			if s := stringValue(item); s != "" {
				items = append(items, s)
			}
		}
		return items
	case string:
		items := []string{}
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		return items
	default:
		return []string{}
	}
}

func parseListOrDefault(v any, fallback []string) []string {
	if items := parseList(v); len(items) > 0 {
		return items
	}
	return fallback
}
