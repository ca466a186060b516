package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/events"
	"github.com/spec-kit/case-service/internal/repository"
	apperrors "github.com/spec-kit/case-service/pkg/util/errorutil"
)

// Thumbnailer produces a thumbnail path for an attachment, or nil when none
// could be made. Implementations must not fail the caller.
type Thumbnailer interface {
	Generate(ctx context.Context, sourceURL, fileName string) *string
}

// CaseService enforces the case lifecycle and messaging rules. Every
// operation that validates against the store and then writes to it holds mu,
// so sequential ids and open-case checks cannot interleave.
type CaseService struct {
	mu         sync.Mutex
	store      repository.Store
	thumbnails Thumbnailer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// CaseDependencies bundles collaborators for the case service.
type CaseDependencies struct {
	Store      repository.Store
	Thumbnails Thumbnailer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewCaseService constructs the service.
func NewCaseService(deps CaseDependencies) *CaseService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &CaseService{
		store:      deps.Store,
		thumbnails: deps.Thumbnails,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// CreateCase opens a new case for ownerID.
func (s *CaseService) CreateCase(ctx context.Context, ownerID int64, issueDescription string) (*domain.Case, error) {
	if ownerID == 0 || strings.TrimSpace(issueDescription) == "" {
		return nil, apperrors.NewValidationError("owner_id and issue_description are required", nil)
	}

	c := &domain.Case{
		OwnerID:          ownerID,
		IssueDescription: issueDescription,
		Status:           domain.CaseStatusOpen,
		CreatedAt:        s.now(),
	}

	s.mu.Lock()
	err := s.store.AppendCase(ctx, c)
	s.mu.Unlock()
	if err != nil {
		return nil, storeError(err, "case")
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventCaseCreated,
		CaseID:  c.ID,
		ActorID: ownerID,
		Payload: events.CaseCreatedPayload{
			OwnerID:          ownerID,
			IssueDescription: stringPreview(issueDescription, 120),
		},
	})
	return c, nil
}

// GetCase returns a case regardless of its status.
func (s *CaseService) GetCase(ctx context.Context, caseID int64) (*domain.Case, error) {
	c, err := s.store.FindCase(ctx, caseID)
	if err != nil {
		return nil, storeError(err, "case")
	}
	return c, nil
}

// CloseCase marks a case closed. Closing an already closed case succeeds.
func (s *CaseService) CloseCase(ctx context.Context, caseID int64) (*domain.Case, error) {
	return s.setStatus(ctx, caseID, domain.CaseStatusClosed)
}

// ReopenCase moves a closed case back to open.
func (s *CaseService) ReopenCase(ctx context.Context, caseID int64) (*domain.Case, error) {
	return s.setStatus(ctx, caseID, domain.CaseStatusOpen)
}

func (s *CaseService) setStatus(ctx context.Context, caseID int64, newStatus domain.CaseStatus) (*domain.Case, error) {
	s.mu.Lock()
	c, err := s.store.FindCase(ctx, caseID)
	if err != nil {
		s.mu.Unlock()
		return nil, storeError(err, "case")
	}
	if newStatus == domain.CaseStatusOpen && c.IsOpen() {
		s.mu.Unlock()
		return nil, apperrors.NewInvalidState("case is already open")
	}
	oldStatus := c.Status
	if err := s.store.UpdateCaseStatus(ctx, caseID, newStatus); err != nil {
		s.mu.Unlock()
		return nil, storeError(err, "case")
	}
	c.Status = newStatus
	s.mu.Unlock()

	s.publishEvent(ctx, events.Event{
		Type:   events.EventCaseStatusChanged,
		CaseID: c.ID,
		Payload: events.CaseStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return c, nil
}

// ListOpenCasesForUser returns the open cases owned by userID. An empty
// result is reported as NotFound.
func (s *CaseService) ListOpenCasesForUser(ctx context.Context, userID int64) ([]domain.Case, error) {
	open := domain.CaseStatusOpen
	cases, err := s.store.ListCases(ctx, repository.CaseFilter{OwnerID: &userID, Status: &open})
	if err != nil {
		return nil, storeError(err, "case")
	}
	if len(cases) == 0 {
		return nil, apperrors.NewNotFound("open case for user", map[string]any{"user_id": userID})
	}
	return cases, nil
}

// openCase loads a case that accepts messages. Closed cases are reported as
// missing.
func (s *CaseService) openCase(ctx context.Context, caseID int64) (*domain.Case, error) {
	c, err := s.store.FindCase(ctx, caseID)
	if err != nil {
		return nil, storeError(err, "case")
	}
	if !c.IsOpen() {
		return nil, apperrors.NewNotFound("case", nil)
	}
	return c, nil
}

func (s *CaseService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// storeError maps repository errors onto domain errors.
func storeError(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.NewInternalError(err)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
