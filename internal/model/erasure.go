package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ErasureEventStore persists the local audit trail of erasures.
type ErasureEventStore interface {
	Create(ctx context.Context, event ErasureEvent) error
	GetBySubject(ctx context.Context, subjectID string) ([]ErasureEvent, error)
	SetReceipt(ctx context.Context, id uuid.UUID, receipt string, anchoredAt time.Time) error
}

// ErasureEvent records one completed crypto-shredding of a subject.
type ErasureEvent struct {
	ID            uuid.UUID
	SubjectID     string
	ErasedAt      time.Time
	LedgerReceipt *string
	AnchoredAt    *time.Time
}

// ErasureLedger anchors erasure events in an external, append-only ledger.
// Implementations may fail independently of local storage; callers treat a
// failed anchoring as reportable but never fatal.
type ErasureLedger interface {
	RecordErasure(ctx context.Context, subjectID string) (ErasureReceipt, error)
}

// ErasureReceipt is the ledger's acknowledgement of a recorded erasure.
type ErasureReceipt struct {
	Reference  string
	AnchoredAt time.Time
}
