package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/case-service/internal/domain"
)

// ErrNotFound is returned when a lookup or update targets a missing id.
var ErrNotFound = errors.New("record not found")

// CaseFilter narrows ListCases. Nil fields match everything.
type CaseFilter struct {
	OwnerID *int64
	Status  *domain.CaseStatus
}

// MessageFilter narrows ListMessages.
type MessageFilter struct {
	CaseID *int64
}

// AttachmentFilter narrows ListAttachments.
type AttachmentFilter struct {
	MessageID *int64
}

// Store holds users, cases, messages and attachments in insertion order.
// Append methods assign the next sequential id (collection size + 1) and
// write it back into the entity.
type Store interface {
	AppendUser(ctx context.Context, user *domain.User) error
	AppendCase(ctx context.Context, c *domain.Case) error
	AppendMessage(ctx context.Context, msg *domain.Message) error
	AppendAttachment(ctx context.Context, attachment *domain.Attachment) error

	FindUser(ctx context.Context, id int64) (*domain.User, error)
	FindCase(ctx context.Context, id int64) (*domain.Case, error)
	FindMessage(ctx context.Context, id int64) (*domain.Message, error)

	ListUsers(ctx context.Context) ([]domain.User, error)
	ListCases(ctx context.Context, filter CaseFilter) ([]domain.Case, error)
	ListMessages(ctx context.Context, filter MessageFilter) ([]domain.Message, error)
	ListAttachments(ctx context.Context, filter AttachmentFilter) ([]domain.Attachment, error)

	UpdateCaseStatus(ctx context.Context, id int64, status domain.CaseStatus) error
	UpdateMessageContent(ctx context.Context, id int64, content string) error
	SetAttachmentThumbnail(ctx context.Context, id int64, thumbnailURL string) error
}

func (f CaseFilter) matches(c *domain.Case) bool {
	if f.OwnerID != nil && c.OwnerID != *f.OwnerID {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	return true
}

func (f MessageFilter) matches(msg *domain.Message) bool {
	return f.CaseID == nil || msg.CaseID == *f.CaseID
}

func (f AttachmentFilter) matches(attachment *domain.Attachment) bool {
	return f.MessageID == nil || attachment.MessageID == *f.MessageID
}
