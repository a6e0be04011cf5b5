package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ReportRepository runs read-only aggregates over tickets.
type ReportRepository interface {
	CountByStatus(ctx context.Context) ([]domain.CountBucket, error)
	CountByPriority(ctx context.Context) ([]domain.CountBucket, error)
	CountBySLAState(ctx context.Context) ([]domain.CountBucket, error)
	CountByCategory(ctx context.Context) ([]domain.CountBucket, error)
	AverageResolution(ctx context.Context) (*time.Duration, error)
	AgentStats(ctx context.Context) ([]domain.AgentStat, error)
	Recent(ctx context.Context, limit int) ([]domain.Ticket, error)
}

type reportRepository struct {
	db DBTX
}

// NewReportRepository builds repository.
func NewReportRepository(db DBTX) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) CountByStatus(ctx context.Context) ([]domain.CountBucket, error) {
	return r.countBy(ctx, `SELECT status, status, COUNT(*) FROM tickets GROUP BY status ORDER BY status`)
}

func (r *reportRepository) CountByPriority(ctx context.Context) ([]domain.CountBucket, error) {
	const query = `
        SELECT p.key, p.name, COUNT(t.id)
        FROM priorities p
        LEFT JOIN tickets t ON t.priority_id = p.id
        GROUP BY p.id, p.key, p.name, p.sort_order
        ORDER BY p.sort_order, p.name`
	return r.countBy(ctx, query)
}

func (r *reportRepository) CountBySLAState(ctx context.Context) ([]domain.CountBucket, error) {
	return r.countBy(ctx, `SELECT sla_state, sla_state, COUNT(*) FROM tickets GROUP BY sla_state ORDER BY sla_state`)
}

func (r *reportRepository) CountByCategory(ctx context.Context) ([]domain.CountBucket, error) {
	return r.countBy(ctx, `SELECT category, category, COUNT(*) FROM tickets GROUP BY category ORDER BY COUNT(*) DESC, category`)
}

func (r *reportRepository) AverageResolution(ctx context.Context) (*time.Duration, error) {
	var avg *float64
	err := r.db.QueryRow(ctx, `SELECT AVG(resolution_seconds)::float8 FROM tickets WHERE resolution_seconds IS NOT NULL`).Scan(&avg)
	if err != nil {
		return nil, err
	}
	return secondsToDuration(avg), nil
}

func (r *reportRepository) AgentStats(ctx context.Context) ([]domain.AgentStat, error) {
	const query = `
        SELECT u.id, u.username, COUNT(t.id), AVG(t.resolution_seconds)::float8
        FROM tickets t
        JOIN users u ON u.id = t.assignee_id
        WHERE t.status IN ('resolved','closed')
        GROUP BY u.id, u.username
        ORDER BY COUNT(t.id) DESC, u.username`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AgentStat
	for rows.Next() {
		var (
			stat domain.AgentStat
			avg  *float64
		)
		if err := rows.Scan(&stat.UserID, &stat.Username, &stat.Resolved, &avg); err != nil {
			return nil, err
		}
		stat.AverageResolution = secondsToDuration(avg)
		result = append(result, stat)
	}
	return result, rows.Err()
}

func (r *reportRepository) Recent(ctx context.Context, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *reportRepository) countBy(ctx context.Context, query string) ([]domain.CountBucket, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CountBucket, error) {
		var bucket domain.CountBucket
		err := row.Scan(&bucket.Key, &bucket.Label, &bucket.Count)
		return bucket, err
	})
}

func secondsToDuration(secs *float64) *time.Duration {
	if secs == nil {
		return nil
	}
	d := time.Duration(*secs * float64(time.Second))
	return &d
}
