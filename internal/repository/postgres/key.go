package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fjcero/ClearGDPR/internal/model"
)

var _ model.KeyStore = (*KeyRepository)(nil)

type KeyRepository struct {
	db Querier
}

func NewKeyRepository(db Querier) *KeyRepository {
	return &KeyRepository{
		db: db,
	}
}

func (r *KeyRepository) Create(ctx context.Context, key model.EncryptionKey) error {
	query := `INSERT INTO encryption_keys (subject_id, key_material) VALUES ($1, $2)`

	_, err := r.db.Exec(ctx, query, key.SubjectID, key.Material)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			return model.ErrConflict
		}
		return fmt.Errorf("failed to create encryption key: %w", err)
	}

	return nil
}

func (r *KeyRepository) GetBySubject(ctx context.Context, subjectID string) (model.EncryptionKey, error) {
	query := `SELECT subject_id, key_material, created_at FROM encryption_keys WHERE subject_id = $1`

	var key model.EncryptionKey
	err := r.db.QueryRow(ctx, query, subjectID).Scan(&key.SubjectID, &key.Material, &key.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.EncryptionKey{}, model.ErrNotFound
		}
		return model.EncryptionKey{}, fmt.Errorf("failed to get encryption key: %w", err)
	}

	return key, nil
}

func (r *KeyRepository) DeleteBySubject(ctx context.Context, subjectID string) (int64, error) {
	query := `DELETE FROM encryption_keys WHERE subject_id = $1`

	cmd, err := r.db.Exec(ctx, query, subjectID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete encryption key: %w", err)
	}

	return cmd.RowsAffected(), nil
}
