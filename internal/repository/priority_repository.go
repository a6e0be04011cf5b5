package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// PriorityRepository persists the priority catalog.
type PriorityRepository interface {
	Create(ctx context.Context, priority *domain.Priority) error
	Update(ctx context.Context, priority *domain.Priority) error
	GetByID(ctx context.Context, id int64) (*domain.Priority, error)
	List(ctx context.Context) ([]domain.Priority, error)
	NextSortOrder(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
}

type priorityRepository struct {
	db DBTX
}

// NewPriorityRepository builds repository.
func NewPriorityRepository(db DBTX) PriorityRepository {
	return &priorityRepository{db: db}
}

func (r *priorityRepository) Create(ctx context.Context, priority *domain.Priority) error {
	const query = `
        INSERT INTO priorities (key, name, resolution_minutes, sort_order)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		priority.Key,
		priority.Name,
		priority.ResolutionMinutes,
		priority.SortOrder,
	).Scan(&priority.ID, &priority.CreatedAt)
}

func (r *priorityRepository) Update(ctx context.Context, priority *domain.Priority) error {
	const query = `
        UPDATE priorities SET key=$1, name=$2, resolution_minutes=$3, sort_order=$4
        WHERE id=$5`
	cmd, err := r.db.Exec(ctx, query,
		priority.Key,
		priority.Name,
		priority.ResolutionMinutes,
		priority.SortOrder,
		priority.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *priorityRepository) GetByID(ctx context.Context, id int64) (*domain.Priority, error) {
	const query = `
        SELECT id, key, name, resolution_minutes, sort_order, created_at
        FROM priorities WHERE id=$1`
	var p domain.Priority
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Key, &p.Name, &p.ResolutionMinutes, &p.SortOrder, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *priorityRepository) List(ctx context.Context) ([]domain.Priority, error) {
	const query = `
        SELECT id, key, name, resolution_minutes, sort_order, created_at
        FROM priorities ORDER BY sort_order, name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Priority
	for rows.Next() {
		var p domain.Priority
		if err := rows.Scan(&p.ID, &p.Key, &p.Name, &p.ResolutionMinutes, &p.SortOrder, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *priorityRepository) NextSortOrder(ctx context.Context) (int, error) {
	var next int
	err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(sort_order), 0) + 1 FROM priorities`).Scan(&next)
	return next, err
}

func (r *priorityRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM priorities WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
