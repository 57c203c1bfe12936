package model

import (
	"context"
	"io"
)

// EvidenceStore archives erasure evidence documents in object storage.
// Evidence is append-only; there is deliberately no delete operation.
type EvidenceStore interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
}
