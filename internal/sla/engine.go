// Package sla computes the service-level commitment for a ticket snapshot.
//
// Compute is pure: it never reads the clock or the database. Callers resolve
// the priority and the candidate rules first and pass "now" explicitly, so the
// same inputs always yield the same Result and recomputation is safe on every
// save.
package sla

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RuleMatcher resolves the override rule for a (priority, ticket type) pair.
type RuleMatcher interface {
	MatchRule(priorityID int64, ticketType domain.TicketType) *domain.SLARule
}

// RuleTable is an in-memory RuleMatcher over a set of rules.
type RuleTable []domain.SLARule

// MatchRule returns the rule for the pair or nil.
func (t RuleTable) MatchRule(priorityID int64, ticketType domain.TicketType) *domain.SLARule {
	for i := range t {
		if t[i].PriorityID == priorityID && t[i].TicketType == ticketType {
			rule := t[i]
			return &rule
		}
	}
	return nil
}

// Input is the ticket snapshot the SLA depends on.
type Input struct {
	Priority   *domain.Priority
	TicketType domain.TicketType
	CreatedAt  time.Time
	Status     domain.TicketStatus
	ClosedAt   *time.Time
	Now        time.Time
}

// Result is the computed SLA outcome.
type Result struct {
	Rule          *domain.SLARule
	TargetMinutes *int
	Deadline      *time.Time
	State         domain.SLAState
}

// InputFor builds the engine input from a ticket and its resolved priority.
func InputFor(ticket *domain.Ticket, priority *domain.Priority, now time.Time) Input {
	return Input{
		Priority:   priority,
		TicketType: ticket.Type,
		CreatedAt:  ticket.CreatedAt,
		Status:     ticket.Status,
		ClosedAt:   ticket.ClosedAt,
		Now:        now,
	}
}

// Compute derives rule, target, deadline and state for in.
func Compute(in Input, rules RuleMatcher) Result {
	var rule *domain.SLARule
	target := 0
	if in.Priority != nil {
		if in.TicketType != "" && rules != nil {
			rule = rules.MatchRule(in.Priority.ID, in.TicketType)
		}
		if rule != nil {
			target = rule.TargetMinutes
		} else {
			target = in.Priority.ResolutionMinutes
		}
	}
	if target <= 0 {
		return Result{State: domain.SLAStateNoRule}
	}

	base := in.CreatedAt
	if base.IsZero() {
		base = in.Now
	}
	deadline := base.Add(time.Duration(target) * time.Minute)
	return Result{
		Rule:          rule,
		TargetMinutes: &target,
		Deadline:      &deadline,
		State:         determineState(in, deadline),
	}
}

func determineState(in Input, deadline time.Time) domain.SLAState {
	if in.Status.IsFinished() {
		closedAt := in.Now
		if in.ClosedAt != nil {
			closedAt = *in.ClosedAt
		}
		if !closedAt.After(deadline) {
			return domain.SLAStateMet
		}
		return domain.SLAStateBreached
	}
	if in.Now.After(deadline) {
		return domain.SLAStateBreached
	}
	return domain.SLAStatePending
}

// RuleID returns the id of the rule used, if any.
func (r Result) RuleID() *int64 {
	if r.Rule == nil {
		return nil
	}
	id := r.Rule.ID
	return &id
}

// DiffersFrom reports whether the stored deadline or state on ticket differ from r.
func (r Result) DiffersFrom(ticket *domain.Ticket) bool {
	if ticket.SLAState != r.State {
		return true
	}
	switch {
	case ticket.SLADeadline == nil && r.Deadline == nil:
		return false
	case ticket.SLADeadline == nil || r.Deadline == nil:
		return true
	default:
		return !ticket.SLADeadline.Equal(*r.Deadline)
	}
}
