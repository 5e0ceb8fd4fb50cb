package common

import (
	"context"
	"io"
)

// StoredFile is what the attachment storage hands back after a
// successful upload. StorageRef is only used for later deletion and
// must never be exposed to clients.
type StoredFile struct {
	URL        string
	SizeBytes  int64
	MimeType   string
	StorageRef string
}

// AttachmentStorage is the file storage collaborator. The engine only
// needs store and delete; serving bytes is the transport's problem.
type AttachmentStorage interface {
	Store(ctx context.Context, filename, mimeType string, content io.Reader) (*StoredFile, error)
	Delete(ctx context.Context, storageRef string) error
}

// Participant is the directory view of a manager or customer.
type Participant struct {
	ID           string
	Role         Role
	Name         string
	BusinessName string
	Phone        string
}

// ParticipantDirectory resolves display details for the two sides of a
// conversation. Identity issuance lives elsewhere.
type ParticipantDirectory interface {
	Manager(ctx context.Context, managerID string) (*Participant, error)
	Customer(ctx context.Context, customerID string) (*Participant, error)
}
