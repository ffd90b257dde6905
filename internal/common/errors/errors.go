// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Ingest / input errors
	ErrCodeUploadParseFailed  ErrorCode = "UPLOAD_PARSE_FAILED"
	ErrCodeUploadSchemaFailed ErrorCode = "UPLOAD_SCHEMA_FAILED"
	ErrCodeEmptyProviderBatch ErrorCode = "EMPTY_PROVIDER_BATCH"

	// Validation / enrichment / quality errors
	ErrCodeProviderValidationFailed ErrorCode = "PROVIDER_VALIDATION_FAILED"
	ErrCodeEnrichmentFailed         ErrorCode = "ENRICHMENT_FAILED"
	ErrCodeQualityAssessmentFailed  ErrorCode = "QUALITY_ASSESSMENT_FAILED"
	ErrCodeReportGenerationFailed   ErrorCode = "REPORT_GENERATION_FAILED"
	ErrCodeDuplicateScanFailed      ErrorCode = "DUPLICATE_SCAN_FAILED"
	ErrCodeTrendAnalysisFailed      ErrorCode = "TREND_ANALYSIS_FAILED"

	// Infrastructure errors
	ErrCodeBrokerUnavailable        ErrorCode = "BROKER_UNAVAILABLE"
	ErrCodeBrokerTimeout            ErrorCode = "BROKER_TIMEOUT"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeIndexWriteFailed         ErrorCode = "INDEX_WRITE_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ConvertToBPMNError maps a StandardError onto the workflow error shape.
func ConvertToBPMNError(err *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(err.Code),
		Message:   err.Message,
		Details:   err.Details,
		Retryable: err.Retryable,
		Retries:   GetRetryCount(err.Code),
	}
}

// GetRetryCount returns how many retries a given error code deserves.
// Only infrastructure failures are worth retrying; input and business-rule
// failures will fail the same way every time.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeBrokerUnavailable,
		ErrCodeBrokerTimeout,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeQueryTimeout,
		ErrCodeCacheUnavailable,
		ErrCodeIndexWriteFailed,
		ErrCodeNotificationSendFailed:
		return 3
	default:
		return 0
	}
}

// GetErrorCategory buckets codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeUploadParseFailed, ErrCodeUploadSchemaFailed, ErrCodeEmptyProviderBatch:
		return "input"
	case ErrCodeBrokerUnavailable, ErrCodeBrokerTimeout,
		ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed,
		ErrCodeQueryTimeout, ErrCodeCacheUnavailable, ErrCodeIndexWriteFailed:
		return "infrastructure"
	case ErrCodeNotificationSendFailed:
		return "delivery"
	default:
		return "business"
	}
}

// ==========================
// 3. Error Constructors
// ==========================

// NewUploadParseFailedError creates a non-retryable upload parsing error.
func NewUploadParseFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadParseFailed,
		Message:   "Uploaded provider file could not be parsed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadSchemaFailedError creates a non-retryable schema validation error.
func NewUploadSchemaFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadSchemaFailed,
		Message:   "Uploaded provider document failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderValidationFailedError creates a non-retryable validation error.
func NewProviderValidationFailedError(providerID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderValidationFailed,
		Message:   "Provider validation failed",
		Details:   fmt.Sprintf("providerId: %s, error: %v", providerID, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateScanFailedError creates a non-retryable dedupe error.
func NewDuplicateScanFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateScanFailed,
		Message:   "Duplicate detection scan failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBrokerUnavailableError creates a retryable broker connectivity error.
func NewBrokerUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBrokerUnavailable,
		Message:   "Workflow broker unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBrokerTimeoutError creates a retryable broker timeout error.
func NewBrokerTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBrokerTimeout,
		Message:   "Workflow broker request timed out",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Report cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexWriteFailedError creates a retryable search-index error.
func NewIndexWriteFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexWriteFailed,
		Message:   "Search index write failed",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable delivery error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
