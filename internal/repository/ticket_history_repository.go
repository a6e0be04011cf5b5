package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// HistoryFilter narrows a ticket's audit log.
type HistoryFilter struct {
	Action *domain.HistoryAction
	Limit  int
	Offset int
}

// TicketHistoryRepository stores audit entries. Entries are never updated or deleted.
type TicketHistoryRepository interface {
	Create(ctx context.Context, history *domain.TicketHistory) error
	// ListByTicket returns entries newest first.
	ListByTicket(ctx context.Context, ticketID int64, filter HistoryFilter) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	db DBTX
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(db DBTX) TicketHistoryRepository {
	return &ticketHistoryRepository{db: db}
}

func (r *ticketHistoryRepository) Create(ctx context.Context, history *domain.TicketHistory) error {
	if history.Metadata == nil {
		history.Metadata = map[string]any{}
	}
	const query = `
        INSERT INTO ticket_history (ticket_id, actor_id, action, field, old_value, new_value, metadata, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		history.TicketID,
		history.ActorID,
		history.Action,
		history.Field,
		history.OldValue,
		history.NewValue,
		history.Metadata,
		history.CreatedAt,
	).Scan(&history.ID)
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID int64, filter HistoryFilter) ([]domain.TicketHistory, error) {
	query := `
        SELECT id, ticket_id, actor_id, action, field, old_value, new_value, metadata, created_at
        FROM ticket_history WHERE ticket_id=$1`
	args := []any{ticketID}
	if filter.Action != nil {
		args = append(args, *filter.Action)
		query += fmt.Sprintf(" AND action=$%d", len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d", limit, max(filter.Offset, 0))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketHistory
	for rows.Next() {
		var history domain.TicketHistory
		if err := rows.Scan(
			&history.ID,
			&history.TicketID,
			&history.ActorID,
			&history.Action,
			&history.Field,
			&history.OldValue,
			&history.NewValue,
			&history.Metadata,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}
