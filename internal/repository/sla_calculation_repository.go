package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SLACalculationRepository stores the per-ticket SLA mirror.
type SLACalculationRepository interface {
	Upsert(ctx context.Context, calc *domain.SLACalculation) error
	GetByTicket(ctx context.Context, ticketID int64) (*domain.SLACalculation, error)
}

type slaCalculationRepository struct {
	db DBTX
}

// NewSLACalculationRepository builds repository.
func NewSLACalculationRepository(db DBTX) SLACalculationRepository {
	return &slaCalculationRepository{db: db}
}

func (r *slaCalculationRepository) Upsert(ctx context.Context, calc *domain.SLACalculation) error {
	const query = `
        INSERT INTO sla_calculations (ticket_id, rule_id, target_minutes, deadline, state, computed_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (ticket_id) DO UPDATE
        SET rule_id=EXCLUDED.rule_id, target_minutes=EXCLUDED.target_minutes,
            deadline=EXCLUDED.deadline, state=EXCLUDED.state, computed_at=EXCLUDED.computed_at`
	_, err := r.db.Exec(ctx, query,
		calc.TicketID,
		calc.RuleID,
		calc.TargetMinutes,
		calc.Deadline,
		calc.State,
		calc.ComputedAt,
	)
	return err
}

func (r *slaCalculationRepository) GetByTicket(ctx context.Context, ticketID int64) (*domain.SLACalculation, error) {
	const query = `
        SELECT ticket_id, rule_id, target_minutes, deadline, state, computed_at
        FROM sla_calculations WHERE ticket_id=$1`
	var calc domain.SLACalculation
	if err := r.db.QueryRow(ctx, query, ticketID).Scan(
		&calc.TicketID,
		&calc.RuleID,
		&calc.TargetMinutes,
		&calc.Deadline,
		&calc.State,
		&calc.ComputedAt,
	); err != nil {
		return nil, err
	}
	return &calc, nil
}
