// internal/store/providers.go

// Package store persists provider records and validation outcomes:
// Postgres for the provider roster, Redis for dashboard snapshots, and
// Elasticsearch for searchable report documents.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"provider-validation/internal/models"

	"github.com/lib/pq"
)

const providersSchema = `
CREATE TABLE IF NOT EXISTS providers (
	provider_id            TEXT PRIMARY KEY,
	npi                    TEXT NOT NULL,
	first_name             TEXT NOT NULL,
	last_name              TEXT NOT NULL,
	specialty              TEXT,
	sub_specialty          TEXT,
	phone                  TEXT,
	email                  TEXT,
	address                TEXT,
	city                   TEXT,
	state                  TEXT,
	zip_code               TEXT,
	license_number         TEXT,
	license_status         TEXT,
	license_expiry         TEXT,
	board_certified        BOOLEAN NOT NULL DEFAULT FALSE,
	years_experience       INTEGER NOT NULL DEFAULT 0,
	medical_school         TEXT,
	accepting_new_patients BOOLEAN NOT NULL DEFAULT TRUE,
	languages              TEXT[],
	hospital_affiliations  TEXT[],
	insurance_accepted     TEXT[],
	data_quality_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
	last_verified          TEXT,
	validation_status      TEXT,
	confidence_score       DOUBLE PRECISION NOT NULL DEFAULT 0,
	needs_manual_review    BOOLEAN NOT NULL DEFAULT FALSE,
	issues_found           TEXT[],
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_providers_state ON providers (state);
CREATE INDEX IF NOT EXISTS idx_providers_specialty ON providers (specialty);
CREATE INDEX IF NOT EXISTS idx_providers_review ON providers (needs_manual_review);
`

const providerColumns = `provider_id, npi, first_name, last_name, specialty, sub_specialty,
	phone, email, address, city, state, zip_code,
	license_number, license_status, license_expiry,
	board_certified, years_experience, medical_school, accepting_new_patients,
	languages, hospital_affiliations, insurance_accepted,
	data_quality_score, last_verified, validation_status,
	confidence_score, needs_manual_review, issues_found`

// ProviderStore is the Postgres-backed provider roster.
type ProviderStore struct {
	db *sql.DB
}

// NewProviderStore wraps an open database handle.
func NewProviderStore(db *sql.DB) *ProviderStore {
	return &ProviderStore{db: db}
}

// EnsureSchema creates the providers table and indexes if absent.
func (s *ProviderStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, providersSchema); err != nil {
		return fmt.Errorf("ensure providers schema: %w", err)
	}
	return nil
}

// Upsert inserts or replaces a provider record keyed by provider_id.
func (s *ProviderStore) Upsert(ctx context.Context, p *models.Provider) error {
	query := fmt.Sprintf(`INSERT INTO providers (%s) VALUES (%s)
		ON CONFLICT (provider_id) DO UPDATE SET %s, updated_at = NOW()`,
		providerColumns, placeholders(28), upsertAssignments())

	_, err := s.db.ExecContext(ctx, query,
		p.ProviderID, p.NPI, p.FirstName, p.LastName, p.Specialty, p.SubSpecialty,
		p.Phone, p.Email, p.Address, p.City, p.State, p.ZipCode,
		p.LicenseNumber, p.LicenseStatus, p.LicenseExpiry,
		p.BoardCertified, p.YearsExperience, p.MedicalSchool, p.AcceptingNewPatients,
		pq.Array(p.Languages), pq.Array(p.HospitalAffiliations), pq.Array(p.InsuranceAccepted),
		p.DataQualityScore, p.LastVerified, p.ValidationStatus,
		p.ConfidenceScore, p.NeedsManualReview, pq.Array(p.IssuesFound),
	)
	if err != nil {
		return fmt.Errorf("upsert provider %s: %w", p.ProviderID, err)
	}
	return nil
}

// UpsertBatch writes all providers in one transaction.
func (s *ProviderStore) UpsertBatch(ctx context.Context, providers []models.Provider) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert batch: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`INSERT INTO providers (%s) VALUES (%s)
		ON CONFLICT (provider_id) DO UPDATE SET %s, updated_at = NOW()`,
		providerColumns, placeholders(28), upsertAssignments())

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i := range providers {
		p := &providers[i]
		if _, err := stmt.ExecContext(ctx,
			p.ProviderID, p.NPI, p.FirstName, p.LastName, p.Specialty, p.SubSpecialty,
			p.Phone, p.Email, p.Address, p.City, p.State, p.ZipCode,
			p.LicenseNumber, p.LicenseStatus, p.LicenseExpiry,
			p.BoardCertified, p.YearsExperience, p.MedicalSchool, p.AcceptingNewPatients,
			pq.Array(p.Languages), pq.Array(p.HospitalAffiliations), pq.Array(p.InsuranceAccepted),
			p.DataQualityScore, p.LastVerified, p.ValidationStatus,
			p.ConfidenceScore, p.NeedsManualReview, pq.Array(p.IssuesFound),
		); err != nil {
			return fmt.Errorf("upsert provider %s: %w", p.ProviderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert batch: %w", err)
	}
	return nil
}

// Get fetches one provider by id. Returns sql.ErrNoRows when absent.
func (s *ProviderStore) Get(ctx context.Context, providerID string) (*models.Provider, error) {
	query := fmt.Sprintf("SELECT %s FROM providers WHERE provider_id = $1", providerColumns)
	return scanProvider(s.db.QueryRowContext(ctx, query, providerID))
}

// List pages through the roster ordered by provider id.
func (s *ProviderStore) List(ctx context.Context, limit, offset int) ([]models.Provider, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM providers ORDER BY provider_id LIMIT $1 OFFSET $2", providerColumns)

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	providers := []models.Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, *p)
	}
	return providers, rows.Err()
}

// ListNeedingReview returns providers flagged for manual review, worst
// quality first.
func (s *ProviderStore) ListNeedingReview(ctx context.Context, limit int) ([]models.Provider, error) {
	query := fmt.Sprintf(`SELECT %s FROM providers
		WHERE needs_manual_review = TRUE
		ORDER BY data_quality_score ASC LIMIT $1`, providerColumns)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list providers needing review: %w", err)
	}
	defer rows.Close()

	providers := []models.Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, *p)
	}
	return providers, rows.Err()
}

// Count returns the roster size.
func (s *ProviderStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM providers").Scan(&count); err != nil {
		return 0, fmt.Errorf("count providers: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProvider(row rowScanner) (*models.Provider, error) {
	var p models.Provider
	var languages, affiliations, insurance, issues pq.StringArray

	err := row.Scan(
		&p.ProviderID, &p.NPI, &p.FirstName, &p.LastName, &p.Specialty, &p.SubSpecialty,
		&p.Phone, &p.Email, &p.Address, &p.City, &p.State, &p.ZipCode,
		&p.LicenseNumber, &p.LicenseStatus, &p.LicenseExpiry,
		&p.BoardCertified, &p.YearsExperience, &p.MedicalSchool, &p.AcceptingNewPatients,
		&languages, &affiliations, &insurance,
		&p.DataQualityScore, &p.LastVerified, &p.ValidationStatus,
		&p.ConfidenceScore, &p.NeedsManualReview, &issues,
	)
	if err != nil {
		return nil, err
	}

	p.Languages = languages
	p.HospitalAffiliations = affiliations
	p.InsuranceAccepted = insurance
	p.IssuesFound = issues
	return &p, nil
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

func upsertAssignments() string {
	cols := strings.Split(providerColumns, ",")
	assignments := make([]string, 0, len(cols)-1)
	for _, col := range cols {
		name := strings.TrimSpace(col)
		if name == "provider_id" {
			continue
		}
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", name, name))
	}
	return strings.Join(assignments, ", ")
}

// marshalJSON is shared by the report stores for stable error wrapping.
func marshalJSON(v any, what string) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", what, err)
	}
	return payload, nil
}
