package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fjcero/ClearGDPR/internal/model"
)

var _ model.ErasureEventStore = (*ErasureEventRepository)(nil)

type ErasureEventRepository struct {
	db Querier
}

func NewErasureEventRepository(db Querier) *ErasureEventRepository {
	return &ErasureEventRepository{
		db: db,
	}
}

func (r *ErasureEventRepository) Create(ctx context.Context, event model.ErasureEvent) error {
	query := `INSERT INTO erasure_events (id, subject_id, erased_at) VALUES ($1, $2, $3)`

	_, err := r.db.Exec(ctx, query, event.ID, event.SubjectID, event.ErasedAt)
	if err != nil {
		return fmt.Errorf("failed to create erasure event: %w", err)
	}

	return nil
}

func (r *ErasureEventRepository) GetBySubject(ctx context.Context, subjectID string) ([]model.ErasureEvent, error) {
	query := `SELECT id, subject_id, erased_at, ledger_receipt, anchored_at
			  FROM erasure_events WHERE subject_id = $1 ORDER BY erased_at ASC`

	rows, err := r.db.Query(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list erasure events: %w", err)
	}
	defer rows.Close()

	var events []model.ErasureEvent
	for rows.Next() {
		var event model.ErasureEvent
		err := rows.Scan(&event.ID, &event.SubjectID, &event.ErasedAt, &event.LedgerReceipt, &event.AnchoredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan erasure event row: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read erasure event rows: %w", err)
	}

	return events, nil
}

func (r *ErasureEventRepository) SetReceipt(ctx context.Context, id uuid.UUID, receipt string, anchoredAt time.Time) error {
	query := `UPDATE erasure_events SET ledger_receipt = $2, anchored_at = $3 WHERE id = $1`

	cmd, err := r.db.Exec(ctx, query, id, receipt, anchoredAt)
	if err != nil {
		return fmt.Errorf("failed to set erasure receipt: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}
