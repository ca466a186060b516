package service

import (
	"context"
	"strings"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/repository"
	apperrors "github.com/spec-kit/case-service/pkg/util/errorutil"
)

// UserService manages the user registry. User types are not checked here;
// CaseService refuses unknown types when they try to post.
type UserService struct {
	store repository.Store
}

// NewUserService constructs the service.
func NewUserService(store repository.Store) *UserService {
	return &UserService{store: store}
}

// CreateUser registers a user.
func (s *UserService) CreateUser(ctx context.Context, name string, userType domain.UserType) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(string(userType)) == "" {
		return nil, apperrors.NewValidationError("name and type are required", nil)
	}
	user := &domain.User{Name: name, Type: userType}
	if err := s.store.AppendUser(ctx, user); err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

// GetUser looks a user up by id.
func (s *UserService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

// ListUsers returns every user in registration order.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return users, nil
}
