// internal/agents/send-notification/models.go
package sendnotification

import "provider-validation/internal/models"

type Input struct {
	Results []models.ProviderResult `json:"results"`
}

type Output struct {
	Notifications  []PrioritizedNotification `json:"notifications"`
	UpdateRequests []UpdateRequest           `json:"update_requests"`
	BatchSummary   BatchSummary              `json:"batch_summary"`
}

// Recipient identifies the provider an email is addressed to.
type Recipient struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProviderID string `json:"provider_id"`
}

// EmailNotification is a rendered provider update-request email.
type EmailNotification struct {
	NotificationID   string    `json:"notification_id"`
	Recipient        Recipient `json:"recipient"`
	Subject          string    `json:"subject"`
	Body             string    `json:"body"`
	Priority         string    `json:"priority"`
	GeneratedAt      string    `json:"generated_at"`
	IssuesAddressed  []string  `json:"issues_addressed"`
	ResponseDeadline string    `json:"response_deadline"`
}

// FieldUpdate is a single field a provider is asked to correct.
type FieldUpdate struct {
	Field        string `json:"field"`
	CurrentValue string `json:"current_value"`
	Issue        string `json:"issue"`
	Required     bool   `json:"required"`
}

// ReminderStep schedules a follow-up contact.
type ReminderStep struct {
	Day  int    `json:"day"`
	Type string `json:"type"`
}

// UpdateRequest is a tracked request for a provider to correct their data.
type UpdateRequest struct {
	RequestID           string         `json:"request_id"`
	ProviderID          string         `json:"provider_id"`
	ProviderName        string         `json:"provider_name"`
	Priority            string         `json:"priority"`
	FieldsToUpdate      []FieldUpdate  `json:"fields_to_update"`
	CurrentQualityScore float64        `json:"current_quality_score"`
	CreatedAt           string         `json:"created_at"`
	Status              string         `json:"status"`
	ReminderSchedule    []ReminderStep `json:"reminder_schedule"`
}

// PrioritizedNotification is one entry in the outbound notification queue.
type PrioritizedNotification struct {
	ProviderID        string `json:"provider_id"`
	ProviderName      string `json:"provider_name"`
	Priority          string `json:"priority"`
	PriorityScore     int    `json:"priority_score"`
	IssuesCount       int    `json:"issues_count"`
	QualityScore      float64 `json:"quality_score"`
	NotificationType  string `json:"notification_type"`
	RecommendedAction string `json:"recommended_action"`
	QueuePosition     int    `json:"queue_position"`
}

// BatchSummary summarizes one notification batch.
type BatchSummary struct {
	TotalNotifications    int            `json:"total_notifications"`
	ByPriority            map[string]int `json:"by_priority"`
	EstimatedResponseRate string         `json:"estimated_response_rate"`
	BatchID               string         `json:"batch_id"`
	CreatedAt             string         `json:"created_at"`
}
