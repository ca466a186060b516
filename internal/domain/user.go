package domain

// UserType is the role a user posts with.
type UserType string

const (
	UserTypeUser  UserType = "user"
	UserTypeStaff UserType = "staff"
	UserTypeAI    UserType = "AI"
)

// User is someone who can own cases or send messages.
type User struct {
	ID   int64
	Name string
	Type UserType
}
