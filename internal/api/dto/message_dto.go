package dto

import (
	"time"

	"github.com/spec-kit/case-service/internal/domain"
)

// AttachmentPayload is the file reference a sender submits with a message.
type AttachmentPayload struct {
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	SenderID   int64              `json:"sender_id"`
	Content    string             `json:"content"`
	Attachment *AttachmentPayload `json:"attachment"`
}

// EditMessageRequest payload.
type EditMessageRequest struct {
	SenderID int64  `json:"sender_id"`
	Content  string `json:"content"`
}

// MessageResponse represents a message. Attachment echoes the submitted file
// reference and is null when none was sent.
type MessageResponse struct {
	MessageID  int64              `json:"message_id"`
	CaseID     int64              `json:"case_id"`
	SenderID   int64              `json:"sender_id"`
	Content    string             `json:"content"`
	CreatedAt  time.Time          `json:"created_at"`
	Attachment *AttachmentPayload `json:"attachment"`
}

// MessageCreatedResponse adds the stored attachment record to a new message.
type MessageCreatedResponse struct {
	MessageResponse
	StoredAttachment *AttachmentResponse `json:"stored_attachment,omitempty"`
}

// AttachmentResponse represents a stored attachment. ThumbnailURL is null when
// no thumbnail could be produced.
type AttachmentResponse struct {
	AttachmentID int64   `json:"attachment_id"`
	MessageID    int64   `json:"message_id"`
	FileName     string  `json:"file_name"`
	FileURL      string  `json:"file_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

// ToAttachmentInput converts the request payload.
func (p *AttachmentPayload) ToAttachmentInput() *domain.AttachmentInput {
	if p == nil {
		return nil
	}
	return &domain.AttachmentInput{FileName: p.FileName, FileURL: p.FileURL}
}

// NewMessageResponse maps a domain message.
func NewMessageResponse(m *domain.Message) MessageResponse {
	resp := MessageResponse{
		MessageID: m.ID,
		CaseID:    m.CaseID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
	if m.Attachment != nil {
		resp.Attachment = &AttachmentPayload{FileName: m.Attachment.FileName, FileURL: m.Attachment.FileURL}
	}
	return resp
}

// NewMessageListResponse maps a slice of messages.
func NewMessageListResponse(msgs []domain.Message) []MessageResponse {
	items := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, NewMessageResponse(&msgs[i]))
	}
	return items
}

// NewAttachmentResponse maps a domain attachment.
func NewAttachmentResponse(a *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		AttachmentID: a.ID,
		MessageID:    a.MessageID,
		FileName:     a.FileName,
		FileURL:      a.FileURL,
		ThumbnailURL: a.ThumbnailURL,
	}
}

// NewAttachmentListResponse maps a slice of attachments.
func NewAttachmentListResponse(attachments []domain.Attachment) []AttachmentResponse {
	items := make([]AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		items = append(items, NewAttachmentResponse(&attachments[i]))
	}
	return items
}
