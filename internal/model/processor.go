package model

import (
	"context"
	"time"
)

// ProcessorStore defines persistence operations for registered processors.
type ProcessorStore interface {
	Upsert(ctx context.Context, processor Processor) error
	GetByID(ctx context.Context, id string) (Processor, error)
	List(ctx context.Context) ([]Processor, error)
}

// AssociationStore records which processor relationships hold over a subject.
type AssociationStore interface {
	Upsert(ctx context.Context, subjectID, processorID string) error
	ListBySubject(ctx context.Context, subjectID string) ([]string, error)
	DeleteBySubject(ctx context.Context, subjectID string) (int64, error)
}

// Processor represents a data processor operating on subject data.
type Processor struct {
	ID          string
	Name        string
	LogoURL     string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
