package dto

import "github.com/spec-kit/case-service/internal/domain"

// CreateUserRequest payload.
type CreateUserRequest struct {
	Name string          `json:"name"`
	Type domain.UserType `json:"type"`
}

// UserResponse represents a registered user.
type UserResponse struct {
	UserID int64           `json:"user_id"`
	Name   string          `json:"name"`
	Type   domain.UserType `json:"type"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{UserID: u.ID, Name: u.Name, Type: u.Type}
}
