// internal/ingest/export.go
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"provider-validation/internal/models"
)

var csvExportHeader = []string{
	"Provider ID", "First Name", "Last Name", "Specialty", "NPI",
	"Phone", "Address", "City", "State", "Zip",
	"Status", "Quality Score", "Priority", "Issues Count",
	"Phone Valid", "Address Valid", "NPI Valid", "License Valid",
	"Issues",
}

// ExportCSV renders a finished batch as a flat CSV, one row per provider.
func ExportCSV(batch *models.BatchResult) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	if err := writer.Write(csvExportHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for i := range batch.Results {
		result := &batch.Results[i]
		provider := &result.Provider
		report := &result.Report

		row := []string{
			provider.ProviderID,
			provider.FirstName,
			provider.LastName,
			provider.Specialty,
			provider.NPI,
			provider.Phone,
			provider.Address,
			provider.City,
			provider.State,
			provider.ZipCode,
			report.OverallStatus,
			fmt.Sprintf("%g", provider.DataQualityScore),
			report.Priority,
			fmt.Sprintf("%d", len(provider.IssuesFound)),
			report.ValidationSummary.Phone,
			report.ValidationSummary.Address,
			report.ValidationSummary.NPI,
			report.ValidationSummary.License,
			strings.Join(provider.IssuesFound, "; "),
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("write csv row for %s: %w", provider.ProviderID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return sb.String(), nil
}

// ExportJSON renders a finished batch as JSON.
func ExportJSON(batch *models.BatchResult, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(batch, "", "  ")
	}
	return json.Marshal(batch)
}
