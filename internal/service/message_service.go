package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/events"
	"github.com/spec-kit/case-service/internal/repository"
	apperrors "github.com/spec-kit/case-service/pkg/util/errorutil"
)

// MessageCreateInput describes a new message on a case.
type MessageCreateInput struct {
	CaseID     int64
	SenderID   int64
	Content    string
	Attachment *domain.AttachmentInput
}

// CreateMessage validates and stores a message, then attaches the optional
// file. Thumbnail generation is best-effort and happens after the writer
// lock is released.
func (s *CaseService) CreateMessage(ctx context.Context, input MessageCreateInput) (*domain.Message, *domain.Attachment, error) {
	if input.SenderID == 0 || input.Content == "" {
		return nil, nil, apperrors.NewValidationError("sender_id and content are required", nil)
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, nil, apperrors.NewValidationError("message content cannot be empty", nil)
	}

	s.mu.Lock()
	msg, attachment, sender, err := s.appendMessage(ctx, input, content)
	s.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	if attachment != nil {
		s.attachThumbnail(ctx, attachment)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventMessageCreated,
		CaseID:  msg.CaseID,
		ActorID: msg.SenderID,
		Payload: events.MessageCreatedPayload{
			MessageID:     msg.ID,
			SenderType:    sender.Type,
			BodyPreview:   stringPreview(msg.Content, 120),
			HasAttachment: attachment != nil,
		},
	})
	if attachment != nil {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventAttachmentCreated,
			CaseID:  msg.CaseID,
			ActorID: msg.SenderID,
			Payload: events.AttachmentCreatedPayload{
				AttachmentID: attachment.ID,
				MessageID:    attachment.MessageID,
				FileName:     attachment.FileName,
				ThumbnailURL: attachment.ThumbnailURL,
			},
		})
	}
	return msg, attachment, nil
}

// appendMessage runs the authorization rules and writes the message and its
// attachment. Callers must hold s.mu.
func (s *CaseService) appendMessage(ctx context.Context, input MessageCreateInput, content string) (*domain.Message, *domain.Attachment, *domain.User, error) {
	c, err := s.openCase(ctx, input.CaseID)
	if err != nil {
		return nil, nil, nil, err
	}

	sender, err := s.store.FindUser(ctx, input.SenderID)
	if err != nil {
		return nil, nil, nil, storeError(err, "sender user")
	}

	if err := authorizeSender(sender, c); err != nil {
		return nil, nil, nil, err
	}

	if input.Attachment != nil {
		if err := validateAttachment(input.Attachment); err != nil {
			return nil, nil, nil, err
		}
	}

	msg := &domain.Message{
		CaseID:     c.ID,
		SenderID:   sender.ID,
		Content:    content,
		CreatedAt:  s.now(),
		Attachment: input.Attachment,
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, nil, nil, storeError(err, "message")
	}

	if input.Attachment == nil {
		return msg, nil, sender, nil
	}

	attachment := &domain.Attachment{
		MessageID: msg.ID,
		FileName:  input.Attachment.FileName,
		FileURL:   input.Attachment.FileURL,
	}
	if err := s.store.AppendAttachment(ctx, attachment); err != nil {
		return nil, nil, nil, storeError(err, "attachment")
	}
	return msg, attachment, sender, nil
}

// authorizeSender applies the posting rules: regular users only on their own
// case, staff and AI on any open case, every other type is refused.
func authorizeSender(sender *domain.User, c *domain.Case) error {
	switch sender.Type {
	case domain.UserTypeUser:
		if c.OwnerID != sender.ID {
			return apperrors.NewForbidden("a regular user can only message their own case")
		}
		return nil
	case domain.UserTypeStaff, domain.UserTypeAI:
		return nil
	default:
		return apperrors.NewForbidden("unknown or unauthorized user type")
	}
}

func validateAttachment(input *domain.AttachmentInput) error {
	if input.FileName == "" || input.FileURL == "" {
		return apperrors.NewValidationError("file_name and file_url are required", nil)
	}
	return nil
}

func (s *CaseService) attachThumbnail(ctx context.Context, attachment *domain.Attachment) {
	if s.thumbnails == nil {
		return
	}
	thumb := s.thumbnails.Generate(ctx, attachment.FileURL, attachment.FileName)
	if thumb == nil {
		return
	}
	if err := s.store.SetAttachmentThumbnail(ctx, attachment.ID, *thumb); err != nil {
		s.logger.Warn("store thumbnail url failed", zap.Int64("attachment_id", attachment.ID), zap.Error(err))
		return
	}
	attachment.ThumbnailURL = thumb
}

// EditMessage replaces the content of a message. Only the original sender may
// edit, whatever their user type.
func (s *CaseService) EditMessage(ctx context.Context, caseID, messageID, senderID int64, content string) (*domain.Message, error) {
	s.mu.Lock()
	if _, err := s.openCase(ctx, caseID); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	msg, err := s.store.FindMessage(ctx, messageID)
	if err != nil {
		s.mu.Unlock()
		return nil, storeError(err, "message")
	}
	if msg.SenderID != senderID {
		s.mu.Unlock()
		return nil, apperrors.NewForbidden("only the original sender can edit the message")
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		s.mu.Unlock()
		return nil, apperrors.NewValidationError("message content cannot be empty", nil)
	}
	if err := s.store.UpdateMessageContent(ctx, messageID, trimmed); err != nil {
		s.mu.Unlock()
		return nil, storeError(err, "message")
	}
	msg.Content = trimmed
	s.mu.Unlock()

	s.publishEvent(ctx, events.Event{
		Type:    events.EventMessageEdited,
		CaseID:  msg.CaseID,
		ActorID: senderID,
		Payload: events.MessageEditedPayload{
			MessageID:   msg.ID,
			BodyPreview: stringPreview(trimmed, 120),
		},
	})
	return msg, nil
}

// ListMessages returns the messages of an open case in posting order.
func (s *CaseService) ListMessages(ctx context.Context, caseID int64) ([]domain.Message, error) {
	if _, err := s.openCase(ctx, caseID); err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, repository.MessageFilter{CaseID: &caseID})
	if err != nil {
		return nil, storeError(err, "message")
	}
	return msgs, nil
}

// ListAttachments returns the attachments of a message on an open case.
func (s *CaseService) ListAttachments(ctx context.Context, caseID, messageID int64) ([]domain.Attachment, error) {
	if _, err := s.openCase(ctx, caseID); err != nil {
		return nil, err
	}
	if _, err := s.store.FindMessage(ctx, messageID); err != nil {
		return nil, storeError(err, "message")
	}
	attachments, err := s.store.ListAttachments(ctx, repository.AttachmentFilter{MessageID: &messageID})
	if err != nil {
		return nil, storeError(err, "attachment")
	}
	return attachments, nil
}
