package sla

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

var t0 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func alta() *domain.Priority {
	return &domain.Priority{ID: 1, Key: "alta", Name: "Alta", ResolutionMinutes: 240}
}

func TestComputeIsDeterministic(t *testing.T) {
	closed := t0.Add(30 * time.Minute)
	in := Input{
		Priority:   alta(),
		TicketType: domain.TicketTypeIncident,
		CreatedAt:  t0,
		Status:     domain.TicketStatusResolved,
		ClosedAt:   &closed,
		Now:        t0.Add(time.Hour),
	}
	first := Compute(in, RuleTable{})
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, Compute(in, RuleTable{})); diff != "" {
			t.Fatalf("result changed between calls (-first +again):\n%s", diff)
		}
	}
}

func TestComputeNoRuleWithoutPriority(t *testing.T) {
	res := Compute(Input{TicketType: domain.TicketTypeIncident, CreatedAt: t0, Status: domain.TicketStatusOpen, Now: t0}, nil)
	assert.Equal(t, domain.SLAStateNoRule, res.State)
	assert.Nil(t, res.Deadline)
	assert.Nil(t, res.TargetMinutes)
	assert.Nil(t, res.Rule)
}

func TestComputeNoRuleWhenPriorityHasNoBudget(t *testing.T) {
	p := &domain.Priority{ID: 9, Name: "Sin plazo"}
	res := Compute(Input{Priority: p, TicketType: domain.TicketTypeRequest, CreatedAt: t0, Status: domain.TicketStatusOpen, Now: t0}, RuleTable{})
	assert.Equal(t, domain.SLAStateNoRule, res.State)
	assert.Nil(t, res.Deadline)
}

func TestComputeMissingTicketTypeFallsBackToPriority(t *testing.T) {
	rules := RuleTable{{ID: 3, PriorityID: 1, TicketType: domain.TicketTypeIncident, TargetMinutes: 10}}
	res := Compute(Input{Priority: alta(), CreatedAt: t0, Status: domain.TicketStatusOpen, Now: t0}, rules)
	require.NotNil(t, res.Deadline)
	assert.Nil(t, res.Rule)
	assert.Equal(t, t0.Add(240*time.Minute), *res.Deadline)
}

func TestComputeBreachBoundary(t *testing.T) {
	deadline := t0.Add(240 * time.Minute)
	in := Input{Priority: alta(), TicketType: domain.TicketTypeIncident, CreatedAt: t0, Status: domain.TicketStatusOpen}

	in.Now = deadline.Add(-time.Second)
	assert.Equal(t, domain.SLAStatePending, Compute(in, nil).State)

	in.Now = deadline
	assert.Equal(t, domain.SLAStatePending, Compute(in, nil).State)

	in.Now = deadline.Add(time.Second)
	assert.Equal(t, domain.SLAStateBreached, Compute(in, nil).State)
}

func TestComputeClosedTickets(t *testing.T) {
	deadline := t0.Add(240 * time.Minute)
	onTime := deadline
	late := deadline.Add(time.Minute)

	in := Input{Priority: alta(), TicketType: domain.TicketTypeIncident, CreatedAt: t0, Status: domain.TicketStatusClosed, Now: deadline.Add(48 * time.Hour)}

	in.ClosedAt = &onTime
	assert.Equal(t, domain.SLAStateMet, Compute(in, nil).State)

	in.ClosedAt = &late
	assert.Equal(t, domain.SLAStateBreached, Compute(in, nil).State)

	in.ClosedAt = nil
	in.Now = deadline.Add(-time.Hour)
	assert.Equal(t, domain.SLAStateMet, Compute(in, nil).State, "missing closure time uses now")
}

func TestComputeUsesNowForUnsavedTicket(t *testing.T) {
	res := Compute(Input{Priority: alta(), TicketType: domain.TicketTypeIncident, Status: domain.TicketStatusOpen, Now: t0}, nil)
	require.NotNil(t, res.Deadline)
	assert.Equal(t, t0.Add(240*time.Minute), *res.Deadline)
	assert.Equal(t, domain.SLAStatePending, res.State)
}

func TestComputeRuleOverridesPriorityDefault(t *testing.T) {
	baja := &domain.Priority{ID: 2, Key: "baja", Name: "Baja", ResolutionMinutes: 1440}
	rules := RuleTable{
		{ID: 7, PriorityID: 2, TicketType: domain.TicketTypeIncident, TargetMinutes: 60},
		{ID: 8, PriorityID: 1, TicketType: domain.TicketTypeIncident, TargetMinutes: 5},
	}
	res := Compute(Input{Priority: baja, TicketType: domain.TicketTypeIncident, CreatedAt: t0, Status: domain.TicketStatusOpen, Now: t0}, rules)

	want := Result{
		Rule:          &domain.SLARule{ID: 7, PriorityID: 2, TicketType: domain.TicketTypeIncident, TargetMinutes: 60},
		TargetMinutes: intPtr(60),
		Deadline:      timePtr(t0.Add(time.Hour)),
		State:         domain.SLAStatePending,
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
	require.NotNil(t, res.RuleID())
	assert.Equal(t, int64(7), *res.RuleID())

	other := Compute(Input{Priority: baja, TicketType: domain.TicketTypeRequest, CreatedAt: t0, Status: domain.TicketStatusOpen, Now: t0}, rules)
	assert.Equal(t, t0.Add(1440*time.Minute), *other.Deadline)
}

func TestResultDiffersFrom(t *testing.T) {
	deadline := t0.Add(time.Hour)
	res := Result{Deadline: &deadline, State: domain.SLAStatePending}

	ticket := &domain.Ticket{SLAState: domain.SLAStatePending, SLADeadline: timePtr(deadline)}
	assert.False(t, res.DiffersFrom(ticket))

	ticket.SLAState = domain.SLAStateBreached
	assert.True(t, res.DiffersFrom(ticket))

	ticket.SLAState = domain.SLAStatePending
	ticket.SLADeadline = nil
	assert.True(t, res.DiffersFrom(ticket))

	assert.False(t, Result{State: domain.SLAStateNoRule}.DiffersFrom(&domain.Ticket{SLAState: domain.SLAStateNoRule}))
}

func intPtr(v int) *int { return &v }

func timePtr(v time.Time) *time.Time { return &v }
