package model

import (
	"context"
	"time"
)

// KeyStore defines persistence operations for per-subject encryption keys.
// There is no update operation: key material is written once and only ever
// deleted, which is the erasure mechanism.
type KeyStore interface {
	Create(ctx context.Context, key EncryptionKey) error
	GetBySubject(ctx context.Context, subjectID string) (EncryptionKey, error)
	DeleteBySubject(ctx context.Context, subjectID string) (int64, error)
}

// EncryptionKey holds the key material owned by exactly one subject.
type EncryptionKey struct {
	SubjectID string
	Material  string
	CreatedAt time.Time
}
