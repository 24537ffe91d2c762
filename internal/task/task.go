// Package task defines the domain model for captures and the tasks derived
// from them, plus the deterministic scheduling rules shared by the generator
// and the lifecycle controller.
package task

import "time"

// Type is the closed vocabulary of task types.
type Type string

const (
	TypeFollowUpSMS    Type = "follow_up_sms"
	TypeReminder       Type = "reminder"
	TypeReminderCall   Type = "reminder_call"
	TypeCampaign       Type = "campaign"
	TypeContactCRUD    Type = "contact_crud"
	TypeEmailSendReply Type = "email_send_reply"
)

// Status is the task lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusArchived  Status = "archived"
	StatusDismissed Status = "dismissed"
)

// DeliveryMethod is how an approved task eventually reaches its target.
type DeliveryMethod string

const (
	DeliverySMS      DeliveryMethod = "sms"
	DeliveryEmail    DeliveryMethod = "email"
	DeliveryPhone    DeliveryMethod = "phone"
	DeliveryInternal DeliveryMethod = "internal"
)

// CaptureStatus is the processing state of a voice note.
type CaptureStatus string

const (
	CaptureProcessing CaptureStatus = "processing"
	CaptureCompleted  CaptureStatus = "completed"
	CaptureFailed     CaptureStatus = "failed"
)

// Capture is one transcribed voice note. The transcription is immutable once
// stored; only the processing status changes.
type Capture struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	Transcription   string        `json:"transcription"`
	DurationSeconds float64       `json:"durationSeconds"`
	Status          CaptureStatus `json:"status"`
	CapturedAt      time.Time     `json:"capturedAt"`
}

// Task is one atomic actionable unit derived from a capture. Tasks are never
// physically deleted; terminal states are retained for history.
type Task struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	CaptureID      string         `json:"captureId"`
	Type           Type           `json:"type"`
	Status         Status         `json:"status"`
	ContactID      *string        `json:"contactId,omitempty"`
	ContactName    *string        `json:"contactName,omitempty"`
	ContactPhone   *string        `json:"contactPhone,omitempty"`
	ContactEmail   *string        `json:"contactEmail,omitempty"`
	Message        string         `json:"message"`
	DeliveryMethod DeliveryMethod `json:"deliveryMethod"`

	// OriginalTranscription is joined from the source capture at read
	// time, not stored on the task row.
	OriginalTranscription string `json:"originalTranscription"`

	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	ApprovedAt   *time.Time `json:"approvedAt,omitempty"`
	ArchivedAt   *time.Time `json:"archivedAt,omitempty"`
	DismissedAt  *time.Time `json:"dismissedAt,omitempty"`
	ExpiresAt    time.Time  `json:"expiresAt"`
}

// DeliveryFor derives the delivery method from a task type.
func DeliveryFor(t Type) DeliveryMethod {
	switch t {
	case TypeFollowUpSMS:
		return DeliverySMS
	case TypeEmailSendReply:
		return DeliveryEmail
	case TypeReminderCall:
		return DeliveryPhone
	default:
		return DeliveryInternal
	}
}

// ContactFacing reports whether tasks of this type address a contact and
// therefore must carry a contact id or display name.
func ContactFacing(t Type) bool {
	return DeliveryFor(t) != DeliveryInternal
}

// DisplayCategory buckets a task type into the coarser review-flow grouping.
type DisplayCategory string

const (
	CategoryFollowUp DisplayCategory = "follow_up"
	CategoryReminder DisplayCategory = "reminder"
	CategoryNote     DisplayCategory = "note"
)

// CategoryFor maps a task type onto its review-flow display category.
func CategoryFor(t Type) DisplayCategory {
	switch t {
	case TypeFollowUpSMS, TypeEmailSendReply:
		return CategoryFollowUp
	case TypeReminder, TypeReminderCall:
		return CategoryReminder
	default:
		return CategoryNote
	}
}

// Active reports whether the task still appears in the owner's working set.
func Active(s Status) bool {
	return s == StatusPending || s == StatusApproved
}

// CallerTransitionAllowed reports whether a caller-initiated transition is
// legal. Only pending→approved and pending→skipped are accepted here;
// sent/delivered/failed belong to the delivery collaborator and
// archived/dismissed to administrative sweeps.
func CallerTransitionAllowed(from, to Status) bool {
	if from != StatusPending {
		return false
	}
	return to == StatusApproved || to == StatusSkipped
}
