package types

import "time"

// Campaign groups. Class years are addressed as "class-<year>".
const (
	GroupAll      = "all"
	GroupStudents = "students"
	GroupAlumni   = "alumni"

	ClassGroupPrefix = "class-"
)

// Campaign is an email broadcast to a group of users.
type Campaign struct {
	// Group selects the recipients.
	Group string `json:"group" validate:"required"`

	// Subject is the email subject line.
	Subject string `json:"subject" validate:"required"`

	// Message is the plain-text email body.
	Message string `json:"message" validate:"required"`

	// Recipients are the resolved email addresses.
	Recipients []string `json:"recipients,omitempty"`

	// RequestedBy is the admin that sent the campaign.
	RequestedBy int64 `json:"requestedBy,omitempty"`

	// QueuedAt is when the campaign was handed to the queue.
	QueuedAt time.Time `json:"queuedAt"`

	// MessageID is the broker identifier of the queued job.
	MessageID string `json:"messageId,omitempty"`
}

// CampaignGroup is a recipient group with its current size.
type CampaignGroup struct {
	Group string `json:"group"`
	Label string `json:"label"`
	Count int    `json:"count"`
}
