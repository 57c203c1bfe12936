package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fjcero/ClearGDPR/internal/model"
)

var _ model.AssociationStore = (*AssociationRepository)(nil)

type AssociationRepository struct {
	db Querier
}

func NewAssociationRepository(db Querier) *AssociationRepository {
	return &AssociationRepository{
		db: db,
	}
}

func (r *AssociationRepository) Upsert(ctx context.Context, subjectID, processorID string) error {
	query := `INSERT INTO processor_associations (subject_id, processor_id)
			  VALUES ($1, $2)
			  ON CONFLICT (subject_id, processor_id) DO NOTHING`

	_, err := r.db.Exec(ctx, query, subjectID, processorID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
			return fmt.Errorf("processor %q is not registered: %w", processorID, model.ErrNotFound)
		}
		return fmt.Errorf("failed to associate processor: %w", err)
	}

	return nil
}

func (r *AssociationRepository) ListBySubject(ctx context.Context, subjectID string) ([]string, error) {
	query := `SELECT processor_id FROM processor_associations WHERE subject_id = $1 ORDER BY processor_id ASC`

	rows, err := r.db.Query(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list processor associations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan association row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read association rows: %w", err)
	}

	return ids, nil
}

func (r *AssociationRepository) DeleteBySubject(ctx context.Context, subjectID string) (int64, error) {
	query := `DELETE FROM processor_associations WHERE subject_id = $1`

	cmd, err := r.db.Exec(ctx, query, subjectID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processor associations: %w", err)
	}

	return cmd.RowsAffected(), nil
}
