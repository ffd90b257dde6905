// internal/agents/send-notification/handler_test.go
package sendnotification

import (
	"context"
	"testing"
	"time"

	"provider-validation/internal/common/errors"
	"provider-validation/internal/common/logger"
	"provider-validation/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmailSender struct {
	sent     []*ses.SendEmailInput
	err      error
	failures int // fail this many calls before succeeding
}

func (f *fakeEmailSender) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	if f.failures > 0 {
		f.failures--
		return nil, assert.AnError
	}
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, input)
	return &ses.SendEmailOutput{}, nil
}

type fakeAlertPublisher struct {
	published []*sns.PublishInput
}

func (f *fakeAlertPublisher) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	f.published = append(f.published, input)
	return &sns.PublishOutput{}, nil
}

func createTestHandler(t *testing.T, email EmailSender, publisher AlertPublisher, dryRun bool) *Handler {
	return NewHandler(&Config{
		Timeout:       10 * time.Second,
		FromAddress:   "provider-relations@healthnetwork.example.com",
		AlertTopicARN: "arn:aws:sns:us-east-1:000000000000:provider-alerts",
		DryRun:        dryRun,
	}, email, publisher, logger.NewTestLogger(t))
}

func createResult(id, priority string, quality float64, review bool, issues []string) models.ProviderResult {
	return models.ProviderResult{
		Provider: models.Provider{
			ProviderID: id,
			FirstName:  "John",
			LastName:   "Smith",
			Specialty:  "Cardiology",
			Email:      "jsmith@example.com",
			Phone:      "(555) 123-4567",
			Address:    "100 Medical Plaza",
			City:       "Springfield",
			State:      "IL",
			ZipCode:    "62701",
			NPI:        "1234567890",
		},
		Validation: models.ValidationResult{
			PhoneValidation:   models.FieldValidation{Valid: true},
			AddressValidation: models.FieldValidation{Valid: true},
			LicenseValidation: models.FieldValidation{Valid: true},
			IssuesFound:       issues,
		},
		Quality: models.QualityResult{QualityScore: quality},
		Report: models.ProviderReport{
			ProviderID:           id,
			Priority:             priority,
			RequiresManualReview: review,
		},
	}
}

// ==========================
// GenerateProviderEmail
// ==========================

func TestHandler_GenerateProviderEmail(t *testing.T) {
	handler := createTestHandler(t, nil, nil, true)
	provider := createResult("PRV00001", "High", 60, true, nil).Provider

	tests := []struct {
		priority string
		subject  string
		greeting string
	}{
		{"Critical", "URGENT: Critical Data Issues Require Immediate Attention", "Dear Dr. John Smith,"},
		{"High", "Important: Provider Data Updates Required", "Dear Dr. John Smith,"},
		{"Medium", "Provider Directory Update Request", "Hello Dr. John Smith,"},
		{"Low", "Routine Provider Information Verification", "Hello Dr. John Smith,"},
		{"Unknown", "Provider Directory Update Request", "Hello Dr. John Smith,"},
	}

	for _, tt := range tests {
		t.Run(tt.priority, func(t *testing.T) {
			email := handler.GenerateProviderEmail(provider, []string{"Invalid phone number format"}, tt.priority)

			assert.Equal(t, tt.subject, email.Subject)
			assert.Contains(t, email.Body, tt.greeting)
			assert.Contains(t, email.Body, "Invalid phone number format")
			assert.Contains(t, email.Body, "NPI: 1234567890")
			assert.NotEmpty(t, email.NotificationID)
			assert.Equal(t, "jsmith@example.com", email.Recipient.Email)
		})
	}
}

func TestHandler_GenerateProviderEmail_Deadlines(t *testing.T) {
	handler := createTestHandler(t, nil, nil, true)
	provider := createResult("PRV00001", "High", 60, true, nil).Provider

	tests := []struct {
		priority string
		days     int
	}{
		{"Critical", 2},
		{"High", 7},
		{"Medium", 14},
		{"Low", 30},
	}

	for _, tt := range tests {
		t.Run(tt.priority, func(t *testing.T) {
			email := handler.GenerateProviderEmail(provider, nil, tt.priority)

			deadline, err := time.Parse(time.RFC3339, email.ResponseDeadline)
			require.NoError(t, err)
			expected := time.Now().AddDate(0, 0, tt.days)
			assert.WithinDuration(t, expected, deadline, time.Minute)
		})
	}
}

func TestHandler_GenerateProviderEmail_NoIssues(t *testing.T) {
	handler := createTestHandler(t, nil, nil, true)
	provider := createResult("PRV00001", "Low", 90, false, nil).Provider

	email := handler.GenerateProviderEmail(provider, nil, "Low")
	assert.Contains(t, email.Body, "No specific issues identified.")
}

// ==========================
// CreateUpdateRequest
// ==========================

func TestHandler_CreateUpdateRequest(t *testing.T) {
	handler := createTestHandler(t, nil, nil, true)

	result := createResult("PRV00001", "High", 55, true, []string{"Invalid phone number format"})
	result.Validation.PhoneValidation = models.FieldValidation{Valid: false, Issue: "Invalid phone number format"}
	result.Validation.LicenseValidation = models.FieldValidation{Valid: false}

	request := handler.CreateUpdateRequest(result)

	assert.Equal(t, "REQ-PRV00001-"+time.Now().Format("20060102"), request.RequestID)
	assert.Equal(t, "John Smith", request.ProviderName)
	assert.Equal(t, "Pending", request.Status)
	assert.Equal(t, 55.0, request.CurrentQualityScore)

	require.Len(t, request.FieldsToUpdate, 2)
	assert.Equal(t, "phone", request.FieldsToUpdate[0].Field)
	assert.Equal(t, "Invalid phone number format", request.FieldsToUpdate[0].Issue)
	assert.Equal(t, "license", request.FieldsToUpdate[1].Field)
	assert.Equal(t, "Invalid", request.FieldsToUpdate[1].Issue)

	// High priority gets the three-step reminder cadence.
	require.Len(t, request.ReminderSchedule, 3)
	assert.Equal(t, ReminderStep{Day: 7, Type: "phone"}, request.ReminderSchedule[2])
}

func TestHandler_CreateUpdateRequest_DefaultPriority(t *testing.T) {
	handler := createTestHandler(t, nil, nil, true)

	result := createResult("PRV00002", "", 80, true, nil)
	request := handler.CreateUpdateRequest(result)

	assert.Equal(t, "Medium", request.Priority)
	assert.Len(t, request.ReminderSchedule, 2)
	assert.Empty(t, request.FieldsToUpdate)
}

// ==========================
// PrioritizeNotifications
// ==========================

func TestHandler_PrioritizeNotifications(t *testing.T) {
	handler := createTestHandler(t, nil, nil, true)

	results := []models.ProviderResult{
		createResult("PRV00001", "Medium", 70, true, []string{"a"}),
		createResult("PRV00002", "Critical", 30, true, []string{"a", "b", "c"}),
		createResult("PRV00003", "Low", 95, false, nil),
		createResult("PRV00004", "High", 55, true, []string{"a", "b"}),
	}

	notifications := handler.PrioritizeNotifications(results)
	require.Len(t, notifications, 3)

	// 100 + 15 + 35 = 150, 75 + 10 + 22 = 107, 50 + 5 + 15 = 70.
	assert.Equal(t, "PRV00002", notifications[0].ProviderID)
	assert.Equal(t, 150, notifications[0].PriorityScore)
	assert.Equal(t, "PRV00004", notifications[1].ProviderID)
	assert.Equal(t, 107, notifications[1].PriorityScore)
	assert.Equal(t, "PRV00001", notifications[2].ProviderID)
	assert.Equal(t, 70, notifications[2].PriorityScore)

	assert.Equal(t, 1, notifications[0].QueuePosition)
	assert.Equal(t, 3, notifications[2].QueuePosition)
}

func TestNotificationType(t *testing.T) {
	critical := createResult("PRV00001", "Medium", 50, true, nil)
	critical.Quality.RedFlags = []models.RedFlag{{Severity: "Critical"}}
	assert.Equal(t, "Urgent Update Required", notificationType(critical))

	high := createResult("PRV00002", "High", 60, true, nil)
	assert.Equal(t, "Priority Update Request", notificationType(high))

	routine := createResult("PRV00003", "Medium", 75, true, nil)
	assert.Equal(t, "Routine Verification", notificationType(routine))
}

// ==========================
// GenerateBatchSummary
// ==========================

func TestHandler_GenerateBatchSummary(t *testing.T) {
	handler := createTestHandler(t, nil, nil, true)

	notifications := []PrioritizedNotification{
		{Priority: "Critical"},
		{Priority: "High"},
		{Priority: "High"},
	}

	summary := handler.GenerateBatchSummary(notifications)

	assert.Equal(t, 3, summary.TotalNotifications)
	assert.Equal(t, 1, summary.ByPriority["Critical"])
	assert.Equal(t, 2, summary.ByPriority["High"])
	assert.Equal(t, "65%", summary.EstimatedResponseRate)
	assert.Regexp(t, `^BATCH-\d{14}$`, summary.BatchID)
}

// ==========================
// Delivery
// ==========================

func TestHandler_Execute_DryRunSkipsDelivery(t *testing.T) {
	email := &fakeEmailSender{}
	publisher := &fakeAlertPublisher{}
	handler := createTestHandler(t, email, publisher, true)

	results := []models.ProviderResult{
		createResult("PRV00001", "Critical", 30, true, []string{"a"}),
	}

	output, err := handler.Execute(context.Background(), &Input{Results: results})
	require.NoError(t, err)

	assert.Len(t, output.Notifications, 1)
	assert.Empty(t, email.sent)
	assert.Empty(t, publisher.published)
}

func TestHandler_Execute_DeliversEmailAndAlert(t *testing.T) {
	email := &fakeEmailSender{}
	publisher := &fakeAlertPublisher{}
	handler := createTestHandler(t, email, publisher, false)

	results := []models.ProviderResult{
		createResult("PRV00001", "Critical", 30, true, []string{"a"}),
		createResult("PRV00002", "Medium", 65, true, nil),
		createResult("PRV00003", "Low", 95, false, nil),
	}

	output, err := handler.Execute(context.Background(), &Input{Results: results})
	require.NoError(t, err)

	assert.Len(t, output.Notifications, 2)
	assert.Len(t, output.UpdateRequests, 2)

	// Both reviewable providers get an email; only critical gets an alert.
	require.Len(t, email.sent, 2)
	assert.Equal(t, "provider-relations@healthnetwork.example.com", *email.sent[0].Source)
	require.Len(t, publisher.published, 1)
	assert.Contains(t, *publisher.published[0].Message, "PRV00001")
}

func TestHandler_Execute_PartialDeliveryFailureDoesNotFailBatch(t *testing.T) {
	email := &fakeEmailSender{failures: 1}
	handler := createTestHandler(t, email, nil, false)

	results := []models.ProviderResult{
		createResult("PRV00001", "High", 55, true, []string{"a"}),
		createResult("PRV00002", "Medium", 65, true, nil),
	}

	output, err := handler.Execute(context.Background(), &Input{Results: results})
	require.NoError(t, err)
	assert.Len(t, output.Notifications, 2)
	assert.Len(t, email.sent, 1)
}

func TestHandler_Execute_AllDeliveriesFailedIsRetryable(t *testing.T) {
	email := &fakeEmailSender{err: assert.AnError}
	handler := createTestHandler(t, email, nil, false)

	results := []models.ProviderResult{
		createResult("PRV00001", "High", 55, true, []string{"a"}),
		createResult("PRV00002", "Medium", 65, true, nil),
	}

	_, err := handler.Execute(context.Background(), &Input{Results: results})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
