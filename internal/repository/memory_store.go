package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/case-service/internal/domain"
)

// memoryStore keeps every collection in an insertion-ordered slice.
// Lookups are linear scans; entities are copied in and out so callers
// can only mutate state through the Update methods.
type memoryStore struct {
	mu          sync.RWMutex
	users       []domain.User
	cases       []domain.Case
	messages    []domain.Message
	attachments []domain.Attachment
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) AppendUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = int64(len(s.users) + 1)
	s.users = append(s.users, *user)
	return nil
}

func (s *memoryStore) AppendCase(_ context.Context, c *domain.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = int64(len(s.cases) + 1)
	s.cases = append(s.cases, *c)
	return nil
}

func (s *memoryStore) AppendMessage(_ context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = int64(len(s.messages) + 1)
	stored := *msg
	stored.Attachment = cloneAttachmentInput(msg.Attachment)
	s.messages = append(s.messages, stored)
	return nil
}

func (s *memoryStore) AppendAttachment(_ context.Context, attachment *domain.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attachment.ID = int64(len(s.attachments) + 1)
	stored := *attachment
	stored.ThumbnailURL = cloneString(attachment.ThumbnailURL)
	s.attachments = append(s.attachments, stored)
	return nil
}

func (s *memoryStore) FindUser(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.users {
		if s.users[i].ID == id {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryStore) FindCase(_ context.Context, id int64) (*domain.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.cases {
		if s.cases[i].ID == id {
			c := s.cases[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryStore) FindMessage(_ context.Context, id int64) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			msg := copyMessage(&s.messages[i])
			return &msg, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryStore) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.User, len(s.users))
	copy(result, s.users)
	return result, nil
}

func (s *memoryStore) ListCases(_ context.Context, filter CaseFilter) ([]domain.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []domain.Case{}
	for i := range s.cases {
		if filter.matches(&s.cases[i]) {
			result = append(result, s.cases[i])
		}
	}
	return result, nil
}

func (s *memoryStore) ListMessages(_ context.Context, filter MessageFilter) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []domain.Message{}
	for i := range s.messages {
		if filter.matches(&s.messages[i]) {
			result = append(result, copyMessage(&s.messages[i]))
		}
	}
	return result, nil
}

func (s *memoryStore) ListAttachments(_ context.Context, filter AttachmentFilter) ([]domain.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []domain.Attachment{}
	for i := range s.attachments {
		if filter.matches(&s.attachments[i]) {
			attachment := s.attachments[i]
			attachment.ThumbnailURL = cloneString(attachment.ThumbnailURL)
			result = append(result, attachment)
		}
	}
	return result, nil
}

func (s *memoryStore) UpdateCaseStatus(_ context.Context, id int64, status domain.CaseStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cases {
		if s.cases[i].ID == id {
			s.cases[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

func (s *memoryStore) UpdateMessageContent(_ context.Context, id int64, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Content = content
			return nil
		}
	}
	return ErrNotFound
}

func (s *memoryStore) SetAttachmentThumbnail(_ context.Context, id int64, thumbnailURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.attachments {
		if s.attachments[i].ID == id {
			s.attachments[i].ThumbnailURL = &thumbnailURL
			return nil
		}
	}
	return ErrNotFound
}

func copyMessage(msg *domain.Message) domain.Message {
	out := *msg
	out.Attachment = cloneAttachmentInput(msg.Attachment)
	return out
}

func cloneAttachmentInput(in *domain.AttachmentInput) *domain.AttachmentInput {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
