package model

import (
	"context"
	"encoding/json"
	"time"
)

// SubjectStore defines persistence operations for data subjects.
type SubjectStore interface {
	Create(ctx context.Context, subject Subject) (Subject, error)
	GetByID(ctx context.Context, id string) (Subject, error)
	UpdateEncryptedData(ctx context.Context, id string, data []byte) (int64, error)
	UpdateRestrictions(ctx context.Context, id string, restrictions Restrictions) (int64, error)
	UpdateObjection(ctx context.Context, id string, objection bool) (int64, error)
	MarkErased(ctx context.Context, id string) (int64, error)
	CountByProcessor(ctx context.Context, processorID string) (int64, error)
	ListByProcessor(ctx context.Context, processorID string, limit, offset int) ([]SubjectListItem, error)
}

// Subject represents a stored data subject.
type Subject struct {
	ID                 string
	EncryptedData      []byte
	DirectMarketing    bool
	EmailCommunication bool
	Research           bool
	Objection          *bool
	Status             SubjectStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SubjectStatus enumerates subject lifecycle states.
type SubjectStatus string

const (
	// SubjectStatusActive is a subject whose personal data is recoverable.
	SubjectStatusActive SubjectStatus = "active"
	// SubjectStatusErased is a subject whose encryption key has been
	// destroyed; the retained ciphertext is permanently opaque.
	SubjectStatusErased SubjectStatus = "erased"
)

// Restrictions holds the per-purpose processing consent flags.
type Restrictions struct {
	DirectMarketing    bool
	EmailCommunication bool
	Research           bool
}

// InitializeSubjectParams contains parameters to create or re-encrypt a subject.
type InitializeSubjectParams struct {
	SubjectID    string
	PersonalData json.RawMessage
	ProcessorIDs []string
}

// SubjectListItem is a single listing entry; personal data is never listed.
type SubjectListItem struct {
	ID        string
	CreatedAt time.Time
}

// SubjectPage is one page of a processor-scoped listing.
type SubjectPage struct {
	Data   []SubjectListItem
	Paging Paging
}

// Paging describes the position of a page within a listing.
type Paging struct {
	Current int
	Total   int
}
