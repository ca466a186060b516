package domain

import "time"

// CaseStatus enumerates lifecycle states for cases.
type CaseStatus string

const (
	CaseStatusOpen   CaseStatus = "open"
	CaseStatusClosed CaseStatus = "closed"
)

// Case is a support request opened by a user.
type Case struct {
	ID               int64
	OwnerID          int64
	IssueDescription string
	Status           CaseStatus
	CreatedAt        time.Time
}

// IsOpen reports whether the case accepts messages.
func (c *Case) IsOpen() bool {
	return c.Status == CaseStatusOpen
}
