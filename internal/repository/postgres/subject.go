package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fjcero/ClearGDPR/internal/model"
)

var _ model.SubjectStore = (*SubjectRepository)(nil)

type SubjectRepository struct {
	db Querier
}

func NewSubjectRepository(db Querier) *SubjectRepository {
	return &SubjectRepository{
		db: db,
	}
}

func (r *SubjectRepository) Create(ctx context.Context, subject model.Subject) (model.Subject, error) {
	query := `INSERT INTO subjects (id, personal_data, direct_marketing, email_communication, research, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, personal_data, direct_marketing, email_communication, research, objection, status, created_at, updated_at`

	var saved model.Subject
	err := r.db.QueryRow(ctx, query,
		subject.ID, subject.EncryptedData,
		subject.DirectMarketing, subject.EmailCommunication, subject.Research,
		string(subject.Status),
	).Scan(
		&saved.ID, &saved.EncryptedData,
		&saved.DirectMarketing, &saved.EmailCommunication, &saved.Research,
		&saved.Objection, &saved.Status, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			return model.Subject{}, model.ErrConflict
		}
		return model.Subject{}, fmt.Errorf("failed to create subject: %w", err)
	}

	return saved, nil
}

func (r *SubjectRepository) GetByID(ctx context.Context, id string) (model.Subject, error) {
	query := `SELECT id, personal_data, direct_marketing, email_communication, research, objection, status, created_at, updated_at
			  FROM subjects WHERE id = $1`

	var subject model.Subject
	err := r.db.QueryRow(ctx, query, id).Scan(
		&subject.ID, &subject.EncryptedData,
		&subject.DirectMarketing, &subject.EmailCommunication, &subject.Research,
		&subject.Objection, &subject.Status, &subject.CreatedAt, &subject.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Subject{}, model.ErrNotFound
		}
		return model.Subject{}, fmt.Errorf("failed to get subject by id: %w", err)
	}

	return subject, nil
}

func (r *SubjectRepository) UpdateEncryptedData(ctx context.Context, id string, data []byte) (int64, error) {
	query := `UPDATE subjects SET personal_data = $2, status = 'active', updated_at = now() WHERE id = $1`

	cmd, err := r.db.Exec(ctx, query, id, data)
	if err != nil {
		return 0, fmt.Errorf("failed to update subject data: %w", err)
	}

	return cmd.RowsAffected(), nil
}

func (r *SubjectRepository) UpdateRestrictions(ctx context.Context, id string, restrictions model.Restrictions) (int64, error) {
	query := `UPDATE subjects SET direct_marketing = $2, email_communication = $3, research = $4, updated_at = now() WHERE id = $1`

	cmd, err := r.db.Exec(ctx, query, id,
		restrictions.DirectMarketing, restrictions.EmailCommunication, restrictions.Research,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update subject restrictions: %w", err)
	}

	return cmd.RowsAffected(), nil
}

func (r *SubjectRepository) UpdateObjection(ctx context.Context, id string, objection bool) (int64, error) {
	query := `UPDATE subjects SET objection = $2, updated_at = now() WHERE id = $1`

	cmd, err := r.db.Exec(ctx, query, id, objection)
	if err != nil {
		return 0, fmt.Errorf("failed to update subject objection: %w", err)
	}

	return cmd.RowsAffected(), nil
}

func (r *SubjectRepository) MarkErased(ctx context.Context, id string) (int64, error) {
	query := `UPDATE subjects SET status = 'erased', updated_at = now() WHERE id = $1`

	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("failed to mark subject erased: %w", err)
	}

	return cmd.RowsAffected(), nil
}

func (r *SubjectRepository) CountByProcessor(ctx context.Context, processorID string) (int64, error) {
	query := `SELECT count(*)
			  FROM subjects s
			  JOIN processor_associations pa ON pa.subject_id = s.id
			  JOIN encryption_keys k ON k.subject_id = s.id
			  WHERE pa.processor_id = $1 AND s.personal_data IS NOT NULL AND s.status = 'active'`

	var count int64
	if err := r.db.QueryRow(ctx, query, processorID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count subjects: %w", err)
	}

	return count, nil
}

func (r *SubjectRepository) ListByProcessor(ctx context.Context, processorID string, limit, offset int) ([]model.SubjectListItem, error) {
	query := `SELECT s.id, s.created_at
			  FROM subjects s
			  JOIN processor_associations pa ON pa.subject_id = s.id
			  JOIN encryption_keys k ON k.subject_id = s.id
			  WHERE pa.processor_id = $1 AND s.personal_data IS NOT NULL AND s.status = 'active'
			  ORDER BY s.id ASC
			  LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, processorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	items := make([]model.SubjectListItem, 0)
	for rows.Next() {
		var item model.SubjectListItem
		if err := rows.Scan(&item.ID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subject row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subject rows: %w", err)
	}

	return items, nil
}
