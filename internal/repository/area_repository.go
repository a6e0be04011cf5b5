package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AreaRepository persists functional areas.
type AreaRepository interface {
	Create(ctx context.Context, area *domain.Area) error
	GetByID(ctx context.Context, id int64) (*domain.Area, error)
	List(ctx context.Context) ([]domain.Area, error)
	Delete(ctx context.Context, id int64) error
}

type areaRepository struct {
	db DBTX
}

// NewAreaRepository builds repository.
func NewAreaRepository(db DBTX) AreaRepository {
	return &areaRepository{db: db}
}

func (r *areaRepository) Create(ctx context.Context, area *domain.Area) error {
	const query = `
        INSERT INTO areas (key, name, sort_order) VALUES ($1,$2,$3)
        RETURNING id`
	return r.db.QueryRow(ctx, query, area.Key, area.Name, area.SortOrder).Scan(&area.ID)
}

func (r *areaRepository) GetByID(ctx context.Context, id int64) (*domain.Area, error) {
	var area domain.Area
	err := r.db.QueryRow(ctx, `SELECT id, key, name, sort_order FROM areas WHERE id=$1`, id).
		Scan(&area.ID, &area.Key, &area.Name, &area.SortOrder)
	if err != nil {
		return nil, err
	}
	return &area, nil
}

func (r *areaRepository) List(ctx context.Context) ([]domain.Area, error) {
	rows, err := r.db.Query(ctx, `SELECT id, key, name, sort_order FROM areas ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Area
	for rows.Next() {
		var area domain.Area
		if err := rows.Scan(&area.ID, &area.Key, &area.Name, &area.SortOrder); err != nil {
			return nil, err
		}
		result = append(result, area)
	}
	return result, rows.Err()
}

func (r *areaRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM areas WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
