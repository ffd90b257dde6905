// internal/agents/send-notification/handler.go
package sendnotification

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"provider-validation/internal/common/errors"
	"provider-validation/internal/common/logger"
	"provider-validation/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "send-notification"

// EmailSender delivers rendered emails. Satisfied by aws.SESClient.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// AlertPublisher publishes critical-priority alerts. Satisfied by
// aws.SNSClient.
type AlertPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// emailTemplate selects subject and writing style by priority.
type emailTemplate struct {
	subject  string
	priority string
	tone     string
}

var emailTemplates = map[string]emailTemplate{
	"critical": {
		subject:  "URGENT: Critical Data Issues Require Immediate Attention",
		priority: "Critical",
		tone:     "urgent",
	},
	"high": {
		subject:  "Important: Provider Data Updates Required",
		priority: "High",
		tone:     "professional",
	},
	"medium": {
		subject:  "Provider Directory Update Request",
		priority: "Medium",
		tone:     "friendly",
	},
	"low": {
		subject:  "Routine Provider Information Verification",
		priority: "Low",
		tone:     "casual",
	},
}

var deadlineDays = map[string]int{
	"critical": 2,
	"high":     7,
	"medium":   14,
	"low":      30,
}

var reminderSchedules = map[string][]ReminderStep{
	"Critical": {
		{Day: 1, Type: "email"},
		{Day: 2, Type: "phone"},
	},
	"High": {
		{Day: 3, Type: "email"},
		{Day: 5, Type: "email"},
		{Day: 7, Type: "phone"},
	},
	"Medium": {
		{Day: 7, Type: "email"},
		{Day: 14, Type: "email"},
	},
	"Low": {
		{Day: 14, Type: "email"},
	},
}

type Handler struct {
	config       *Config
	email        EmailSender
	publisher    AlertPublisher
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

// NewHandler creates the notification handler. email and publisher may be
// nil; delivery is then skipped as in dry-run mode.
func NewHandler(config *Config, email EmailSender, publisher AlertPublisher, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		email:        email,
		publisher:    publisher,
		logger:       scoped,
		errorHandler: errors.NewErrorHandler(scoped),
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
		// Delivery errors are retryable; route them through the shared
		// handler so the broker fails the job with retries instead of
		// receiving a terminal BPMN error.
		h.errorHandler.HandleJobError(context.Background(), client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	notifications := h.PrioritizeNotifications(input.Results)

	requests := make([]UpdateRequest, 0, len(notifications))
	var attempted, failed int
	var lastErr error
	for _, result := range input.Results {
		if !result.Report.RequiresManualReview {
			continue
		}
		requests = append(requests, h.CreateUpdateRequest(result))

		attempted++
		if err := h.deliver(ctx, result); err != nil {
			// A single delivery failure does not abort the batch.
			failed++
			lastErr = err
			h.logger.Warn("notification delivery failed", map[string]interface{}{
				"providerId": result.Provider.ProviderID,
				"error":      err.Error(),
			})
		}
	}

	// Nothing went out at all: likely an SES/SNS outage, worth a retry.
	if attempted > 0 && failed == attempted && lastErr != nil {
		return nil, lastErr
	}

	return &Output{
		Notifications:  notifications,
		UpdateRequests: requests,
		BatchSummary:   h.GenerateBatchSummary(notifications),
	}, nil
}

// GenerateProviderEmail renders a personalized update-request email.
func (h *Handler) GenerateProviderEmail(provider models.Provider, issues []string, priority string) EmailNotification {
	template, ok := emailTemplates[strings.ToLower(priority)]
	if !ok {
		template = emailTemplates["medium"]
	}

	days, ok := deadlineDays[strings.ToLower(priority)]
	if !ok {
		days = 14
	}

	providerName := fmt.Sprintf("Dr. %s %s", provider.FirstName, provider.LastName)
	now := time.Now()

	return EmailNotification{
		NotificationID: uuid.NewString(),
		Recipient: Recipient{
			Name:       providerName,
			Email:      provider.Email,
			ProviderID: provider.ProviderID,
		},
		Subject:          template.subject,
		Body:             emailBody(providerName, template.tone, issues, provider),
		Priority:         template.priority,
		GeneratedAt:      now.Format(time.RFC3339),
		IssuesAddressed:  issues,
		ResponseDeadline: now.AddDate(0, 0, days).Format(time.RFC3339),
	}
}

func emailBody(providerName, tone string, issues []string, provider models.Provider) string {
	var greeting, intro, action string
	switch tone {
	case "urgent":
		greeting = fmt.Sprintf("Dear %s,", providerName)
		intro = "We are contacting you regarding critical discrepancies found in your provider directory listing that require immediate attention."
		action = "Please update your information within 48 hours to maintain your active status in our network."
	case "professional":
		greeting = fmt.Sprintf("Dear %s,", providerName)
		intro = "During our routine directory validation process, we identified some updates needed for your provider profile."
		action = "We kindly request that you review and update your information within the next 7 days."
	default:
		greeting = fmt.Sprintf("Hello %s,", providerName)
		intro = "We're reaching out to verify your current practice information in our healthcare provider directory."
		action = "When you have a moment, please review your listing and confirm or update your information."
	}

	return fmt.Sprintf(`%s

%s

The following items require your attention:
%s

%s

Your Current Information on File:
  - Practice: %s
  - Address: %s, %s, %s %s
  - Phone: %s
  - NPI: %s

To update your information:
  1. Log in to the provider portal
  2. Navigate to "My Profile"
  3. Update the flagged fields
  4. Submit for verification

If you have any questions, please contact our Provider Relations team.

Thank you for your prompt attention to this matter.

Best regards,
Provider Directory Management Team
Healthcare Payer Network
`,
		greeting, intro, formatIssues(issues), action,
		provider.Specialty,
		provider.Address, provider.City, provider.State, provider.ZipCode,
		provider.Phone, provider.NPI)
}

func formatIssues(issues []string) string {
	if len(issues) == 0 {
		return "No specific issues identified."
	}
	lines := make([]string, 0, len(issues))
	for _, issue := range issues {
		lines = append(lines, fmt.Sprintf("  - %s", issue))
	}
	return strings.Join(lines, "\n")
}

// CreateUpdateRequest builds a tracked correction request from a pipeline
// result.
func (h *Handler) CreateUpdateRequest(result models.ProviderResult) UpdateRequest {
	provider := result.Provider
	validation := result.Validation

	fields := []FieldUpdate{}

	if !validation.PhoneValidation.Valid {
		fields = append(fields, FieldUpdate{
			Field:        "phone",
			CurrentValue: provider.Phone,
			Issue:        issueOrDefault(validation.PhoneValidation.Issue),
			Required:     true,
		})
	}
	if !validation.AddressValidation.Valid {
		fields = append(fields, FieldUpdate{
			Field: "address",
			CurrentValue: fmt.Sprintf("%s, %s, %s %s",
				provider.Address, provider.City, provider.State, provider.ZipCode),
			Issue:    issueOrDefault(validation.AddressValidation.Issue),
			Required: true,
		})
	}
	if !validation.LicenseValidation.Valid {
		fields = append(fields, FieldUpdate{
			Field:        "license",
			CurrentValue: provider.LicenseNumber,
			Issue:        issueOrDefault(validation.LicenseValidation.Issue),
			Required:     true,
		})
	}

	priority := result.Report.Priority
	if priority == "" {
		priority = "Medium"
	}

	schedule, ok := reminderSchedules[priority]
	if !ok {
		schedule = reminderSchedules["Medium"]
	}

	return UpdateRequest{
		RequestID:           fmt.Sprintf("REQ-%s-%s", provider.ProviderID, time.Now().Format("20060102")),
		ProviderID:          provider.ProviderID,
		ProviderName:        provider.FullName(),
		Priority:            priority,
		FieldsToUpdate:      fields,
		CurrentQualityScore: result.Quality.QualityScore,
		CreatedAt:           time.Now().Format(time.RFC3339),
		Status:              "Pending",
		ReminderSchedule:    schedule,
	}
}

func issueOrDefault(issue string) string {
	if issue == "" {
		return "Invalid"
	}
	return issue
}

// PrioritizeNotifications orders the notification queue by urgency.
func (h *Handler) PrioritizeNotifications(results []models.ProviderResult) []PrioritizedNotification {
	notifications := []PrioritizedNotification{}

	for _, result := range results {
		if !result.Report.RequiresManualReview {
			continue
		}

		priority := result.Report.Priority
		if priority == "" {
			priority = "Low"
		}

		notifications = append(notifications, PrioritizedNotification{
			ProviderID:        result.Provider.ProviderID,
			ProviderName:      result.Provider.FullName(),
			Priority:          priority,
			PriorityScore:     calculatePriorityScore(result),
			IssuesCount:       len(result.Validation.IssuesFound),
			QualityScore:      result.Quality.QualityScore,
			NotificationType:  notificationType(result),
			RecommendedAction: recommendedAction(priority),
		})
	}

	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].PriorityScore > notifications[j].PriorityScore
	})

	for i := range notifications {
		notifications[i].QueuePosition = i + 1
	}

	return notifications
}

func calculatePriorityScore(result models.ProviderResult) int {
	base := map[string]int{"Critical": 100, "High": 75, "Medium": 50, "Low": 25}

	score, ok := base[result.Report.Priority]
	if !ok {
		score = 25
	}

	score += len(result.Validation.IssuesFound) * 5
	score += int((100 - result.Quality.QualityScore) * 0.5)

	return score
}

func notificationType(result models.ProviderResult) string {
	for _, flag := range result.Quality.RedFlags {
		if flag.Severity == "Critical" {
			return "Urgent Update Required"
		}
	}
	if result.Report.Priority == "Critical" || result.Report.Priority == "High" {
		return "Priority Update Request"
	}
	return "Routine Verification"
}

func recommendedAction(priority string) string {
	actions := map[string]string{
		"Critical": "Immediate phone outreach recommended",
		"High":     "Email with phone follow-up",
		"Medium":   "Standard email notification",
		"Low":      "Batch email notification",
	}
	if action, ok := actions[priority]; ok {
		return action
	}
	return "Standard email notification"
}

// GenerateBatchSummary summarizes a prioritized notification batch.
func (h *Handler) GenerateBatchSummary(notifications []PrioritizedNotification) BatchSummary {
	byPriority := map[string]int{}
	for _, n := range notifications {
		byPriority[n.Priority]++
	}

	now := time.Now()
	return BatchSummary{
		TotalNotifications:    len(notifications),
		ByPriority:            byPriority,
		EstimatedResponseRate: "65%",
		BatchID:               fmt.Sprintf("BATCH-%s", now.Format("20060102150405")),
		CreatedAt:             now.Format(time.RFC3339),
	}
}

// deliver sends the rendered email over SES and, for critical priority,
// publishes an SNS alert. No-op in dry-run mode or with nil clients.
func (h *Handler) deliver(ctx context.Context, result models.ProviderResult) error {
	if h.config.DryRun {
		return nil
	}

	notification := h.GenerateProviderEmail(result.Provider,
		result.Validation.IssuesFound, result.Report.Priority)

	if h.email != nil && notification.Recipient.Email != "" {
		_, err := h.email.SendEmail(ctx, &ses.SendEmailInput{
			Source: aws.String(h.config.FromAddress),
			Destination: &sestypes.Destination{
				ToAddresses: []string{notification.Recipient.Email},
			},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(notification.Subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(notification.Body)},
				},
			},
		})
		if err != nil {
			return errors.NewNotificationSendFailedError("email",
				fmt.Errorf("send email to %s: %w", notification.Recipient.ProviderID, err))
		}
	}

	if h.publisher != nil && h.config.AlertTopicARN != "" && result.Report.Priority == "Critical" {
		_, err := h.publisher.Publish(ctx, &sns.PublishInput{
			TopicArn: aws.String(h.config.AlertTopicARN),
			Subject:  aws.String("Critical provider data issue"),
			Message: aws.String(fmt.Sprintf("Provider %s (%s) requires immediate review",
				result.Provider.FullName(), result.Provider.ProviderID)),
		})
		if err != nil {
			return errors.NewNotificationSendFailedError("sns",
				fmt.Errorf("publish alert for %s: %w", result.Provider.ProviderID, err))
		}
	}

	return nil
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
