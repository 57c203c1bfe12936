package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fjcero/ClearGDPR/internal/model"
)

var _ model.ProcessorStore = (*ProcessorRepository)(nil)

type ProcessorRepository struct {
	db Querier
}

func NewProcessorRepository(db Querier) *ProcessorRepository {
	return &ProcessorRepository{
		db: db,
	}
}

func (r *ProcessorRepository) Upsert(ctx context.Context, processor model.Processor) error {
	query := `INSERT INTO processors (id, name, logo_url, description)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (id) DO UPDATE
			  SET name = EXCLUDED.name, logo_url = EXCLUDED.logo_url, description = EXCLUDED.description, updated_at = now()`

	_, err := r.db.Exec(ctx, query, processor.ID, processor.Name, processor.LogoURL, processor.Description)
	if err != nil {
		return fmt.Errorf("failed to upsert processor: %w", err)
	}

	return nil
}

func (r *ProcessorRepository) GetByID(ctx context.Context, id string) (model.Processor, error) {
	query := `SELECT id, name, logo_url, description, created_at, updated_at FROM processors WHERE id = $1`

	var processor model.Processor
	err := r.db.QueryRow(ctx, query, id).Scan(
		&processor.ID, &processor.Name, &processor.LogoURL, &processor.Description,
		&processor.CreatedAt, &processor.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Processor{}, model.ErrNotFound
		}
		return model.Processor{}, fmt.Errorf("failed to get processor by id: %w", err)
	}

	return processor, nil
}

func (r *ProcessorRepository) List(ctx context.Context) ([]model.Processor, error) {
	query := `SELECT id, name, logo_url, description, created_at, updated_at FROM processors ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list processors: %w", err)
	}
	defer rows.Close()

	var processors []model.Processor
	for rows.Next() {
		var processor model.Processor
		err := rows.Scan(
			&processor.ID, &processor.Name, &processor.LogoURL, &processor.Description,
			&processor.CreatedAt, &processor.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan processor row: %w", err)
		}
		processors = append(processors, processor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read processor rows: %w", err)
	}

	return processors, nil
}
