package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter captures list parameters.
type TicketFilter struct {
	RequesterID *int64
	AssigneeID  *int64
	PriorityIDs []int64
	Statuses    []domain.TicketStatus
	SLAStates   []domain.SLAState
	SearchTerm  *string
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update writes the base fields; SLA fields are left untouched.
	Update(ctx context.Context, ticket *domain.Ticket) error
	UpdateSLA(ctx context.Context, id int64, deadline *time.Time, state domain.SLAState) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.Ticket, error)
	CountByPriority(ctx context.Context, priorityID int64) (int, error)
	CountByArea(ctx context.Context, areaID int64) (int, error)
	SetRequesterCritical(ctx context.Context, requesterID int64, critical bool) (int64, error)
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, title, description, requester_id, assignee_id, priority_id, status, ticket_type,
               area_id, category, requester_critical, created_at, updated_at, closed_at,
               resolution_seconds, sla_deadline, sla_state`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, requester_id, assignee_id, priority_id, status, ticket_type,
            area_id, category, requester_critical, created_at, updated_at, closed_at, resolution_seconds, sla_state)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.RequesterID,
		ticket.AssigneeID,
		ticket.PriorityID,
		ticket.Status,
		ticket.Type,
		ticket.AreaID,
		ticket.Category,
		ticket.RequesterCritical,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.ClosedAt,
		durationSeconds(ticket.ResolutionTime),
		ticket.SLAState,
	).Scan(&ticket.ID)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, assignee_id=$3, priority_id=$4, status=$5, ticket_type=$6,
            area_id=$7, category=$8, requester_critical=$9, updated_at=$10, closed_at=$11, resolution_seconds=$12
        WHERE id=$13`
	cmd, err := r.db.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.AssigneeID,
		ticket.PriorityID,
		ticket.Status,
		ticket.Type,
		ticket.AreaID,
		ticket.Category,
		ticket.RequesterCritical,
		ticket.UpdatedAt,
		ticket.ClosedAt,
		durationSeconds(ticket.ResolutionTime),
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UpdateSLA(ctx context.Context, id int64, deadline *time.Time, state domain.SLAState) error {
	cmd, err := r.db.Exec(ctx, `UPDATE tickets SET sla_deadline=$1, sla_state=$2 WHERE id=$3`, deadline, state, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return scanTicket(r.db.QueryRow(ctx, query, id))
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if len(filter.PriorityIDs) > 0 {
		args = append(args, filter.PriorityIDs)
		clauses = append(clauses, fmt.Sprintf("priority_id = ANY($%d)", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.SLAStates) > 0 {
		placeholders := make([]string, len(filter.SLAStates))
		for i, state := range filter.SLAStates {
			args = append(args, state)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("sla_state IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY requester_critical DESC, created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 500
	}
	query := `SELECT ` + ticketColumns + `
        FROM tickets
        WHERE status IN ('open','in_progress') AND sla_state='pending' AND sla_deadline < $1
        ORDER BY sla_deadline LIMIT $2`
	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountByPriority(ctx context.Context, priorityID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE priority_id=$1`, priorityID).Scan(&count)
	return count, err
}

func (r *ticketRepository) CountByArea(ctx context.Context, areaID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE area_id=$1`, areaID).Scan(&count)
	return count, err
}

func (r *ticketRepository) SetRequesterCritical(ctx context.Context, requesterID int64, critical bool) (int64, error) {
	cmd, err := r.db.Exec(ctx,
		`UPDATE tickets SET requester_critical=$1 WHERE requester_id=$2 AND requester_critical<>$1`,
		critical, requesterID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket     domain.Ticket
		resolution *int64
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.RequesterID,
		&ticket.AssigneeID,
		&ticket.PriorityID,
		&ticket.Status,
		&ticket.Type,
		&ticket.AreaID,
		&ticket.Category,
		&ticket.RequesterCritical,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
		&resolution,
		&ticket.SLADeadline,
		&ticket.SLAState,
	); err != nil {
		return nil, err
	}
	if resolution != nil {
		d := time.Duration(*resolution) * time.Second
		ticket.ResolutionTime = &d
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func durationSeconds(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	secs := int64(d.Seconds())
	return &secs
}
