package events

import (
	"time"

	"github.com/spec-kit/case-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCaseCreated       EventType = "case_created"
	EventCaseStatusChanged EventType = "case_status_changed"
	EventMessageCreated    EventType = "message_created"
	EventMessageEdited     EventType = "message_edited"
	EventAttachmentCreated EventType = "attachment_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	CaseID    int64     `json:"case_id"`
	ActorID   int64     `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// CaseCreatedPayload payload.
type CaseCreatedPayload struct {
	OwnerID          int64  `json:"owner_id"`
	IssueDescription string `json:"issue_description"`
}

// CaseStatusChangedPayload payload.
type CaseStatusChangedPayload struct {
	OldStatus domain.CaseStatus `json:"old_status"`
	NewStatus domain.CaseStatus `json:"new_status"`
}

// MessageCreatedPayload payload.
type MessageCreatedPayload struct {
	MessageID     int64           `json:"message_id"`
	SenderType    domain.UserType `json:"sender_type"`
	BodyPreview   string          `json:"body_preview"`
	HasAttachment bool            `json:"has_attachment"`
}

// MessageEditedPayload payload.
type MessageEditedPayload struct {
	MessageID   int64  `json:"message_id"`
	BodyPreview string `json:"body_preview"`
}

// AttachmentCreatedPayload payload.
type AttachmentCreatedPayload struct {
	AttachmentID int64   `json:"attachment_id"`
	MessageID    int64   `json:"message_id"`
	FileName     string  `json:"file_name"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
}
