package domain

import "time"

// Message is a piece of correspondence on a case.
type Message struct {
	ID         int64
	CaseID     int64
	SenderID   int64
	Content    string
	CreatedAt  time.Time
	Attachment *AttachmentInput
}

// AttachmentInput is the file reference a message was posted with.
type AttachmentInput struct {
	FileName string
	FileURL  string
}

// Attachment stores a file reference for a message and its generated thumbnail.
type Attachment struct {
	ID           int64
	MessageID    int64
	FileName     string
	FileURL      string
	ThumbnailURL *string
}
