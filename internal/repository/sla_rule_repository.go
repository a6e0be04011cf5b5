package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SLARuleRepository persists (priority, ticket type) overrides.
type SLARuleRepository interface {
	Create(ctx context.Context, rule *domain.SLARule) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.SLARule, error)
	// Find returns nil, nil when no rule matches.
	Find(ctx context.Context, priorityID int64, ticketType domain.TicketType) (*domain.SLARule, error)
}

type slaRuleRepository struct {
	db DBTX
}

// NewSLARuleRepository builds repository.
func NewSLARuleRepository(db DBTX) SLARuleRepository {
	return &slaRuleRepository{db: db}
}

func (r *slaRuleRepository) Create(ctx context.Context, rule *domain.SLARule) error {
	const query = `
        INSERT INTO sla_rules (priority_id, ticket_type, target_minutes)
        VALUES ($1,$2,$3)
        RETURNING id`
	return r.db.QueryRow(ctx, query, rule.PriorityID, rule.TicketType, rule.TargetMinutes).Scan(&rule.ID)
}

func (r *slaRuleRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM sla_rules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slaRuleRepository) List(ctx context.Context) ([]domain.SLARule, error) {
	const query = `
        SELECT r.id, r.priority_id, r.ticket_type, r.target_minutes
        FROM sla_rules r JOIN priorities p ON p.id = r.priority_id
        ORDER BY p.sort_order, r.ticket_type`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLARule
	for rows.Next() {
		var rule domain.SLARule
		if err := rows.Scan(&rule.ID, &rule.PriorityID, &rule.TicketType, &rule.TargetMinutes); err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}

func (r *slaRuleRepository) Find(ctx context.Context, priorityID int64, ticketType domain.TicketType) (*domain.SLARule, error) {
	const query = `
        SELECT id, priority_id, ticket_type, target_minutes
        FROM sla_rules WHERE priority_id=$1 AND ticket_type=$2`
	var rule domain.SLARule
	err := r.db.QueryRow(ctx, query, priorityID, ticketType).Scan(&rule.ID, &rule.PriorityID, &rule.TicketType, &rule.TargetMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
