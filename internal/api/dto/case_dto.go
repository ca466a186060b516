package dto

import (
	"time"

	"github.com/spec-kit/case-service/internal/domain"
)

// CreateCaseRequest payload. Both fields may also arrive as query parameters.
type CreateCaseRequest struct {
	OwnerID          int64  `json:"owner_id" query:"owner_id"`
	IssueDescription string `json:"issue_description" query:"issue_description"`
}

// CaseResponse represents a case.
type CaseResponse struct {
	CaseID           int64             `json:"case_id"`
	OwnerID          int64             `json:"owner_id"`
	IssueDescription string            `json:"issue_description"`
	Status           domain.CaseStatus `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
}

// NewCaseResponse maps a domain case.
func NewCaseResponse(c *domain.Case) CaseResponse {
	return CaseResponse{
		CaseID:           c.ID,
		OwnerID:          c.OwnerID,
		IssueDescription: c.IssueDescription,
		Status:           c.Status,
		CreatedAt:        c.CreatedAt,
	}
}

// NewCaseListResponse maps a slice of cases.
func NewCaseListResponse(cases []domain.Case) []CaseResponse {
	items := make([]CaseResponse, 0, len(cases))
	for i := range cases {
		items = append(items, NewCaseResponse(&cases[i]))
	}
	return items
}
