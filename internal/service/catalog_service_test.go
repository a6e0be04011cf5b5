package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func newCatalog(env *testEnv) *CatalogService {
	return NewCatalogService(CatalogDependencies{Repositories: env.db.repos(), Transactor: env.db})
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	return domainErr.Details["fields"].(map[string]string)
}

func TestDeletePriorityReferencedIsProtected(t *testing.T) {
	env := newTestEnv(t)
	catalog := newCatalog(env)
	ticket := env.createTicket(t, env.alta, domain.TicketTypeRequest)
	before := env.db.ticket(ticket.ID)

	err := catalog.DeletePriority(context.Background(), env.alta.ID)
	require.True(t, apperrors.IsCode(err, "PROTECTED_REFERENCE"))
	assert.Equal(t, 1, apperrors.ToDomainError(err).Details["tickets"])

	_, ok := env.db.priorities[env.alta.ID]
	assert.True(t, ok)
	assert.Equal(t, before, env.db.ticket(ticket.ID))
}

func TestDeletePriorityCascadesRules(t *testing.T) {
	env := newTestEnv(t)
	catalog := newCatalog(env)
	env.db.addRule(domain.SLARule{PriorityID: env.baja.ID, TicketType: domain.TicketTypeIncident, TargetMinutes: 60})

	require.NoError(t, catalog.DeletePriority(context.Background(), env.baja.ID))
	assert.NotContains(t, env.db.priorities, env.baja.ID)
	assert.Empty(t, env.db.rules)

	err := catalog.DeletePriority(context.Background(), env.baja.ID)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestCreatePriorityDefaultsSortOrder(t *testing.T) {
	env := newTestEnv(t)
	catalog := newCatalog(env)

	created, err := catalog.CreatePriority(context.Background(), PriorityInput{Key: "critica", Name: " Crítica ", ResolutionMinutes: 60})
	require.NoError(t, err)
	assert.Equal(t, 3, created.SortOrder)
	assert.Equal(t, "Crítica", created.Name)

	list, err := catalog.ListPriorities(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "critica", list[2].Key)
}

func TestCreatePriorityValidation(t *testing.T) {
	env := newTestEnv(t)
	catalog := newCatalog(env)

	_, err := catalog.CreatePriority(context.Background(), PriorityInput{Key: "Muy Alta", ResolutionMinutes: 0})
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "key")
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "resolution_minutes")
}

func TestUpdatePriorityChangesBudgetOnNextSave(t *testing.T) {
	env := newTestEnv(t)
	catalog := newCatalog(env)
	ticket := env.createTicket(t, env.alta, domain.TicketTypeRequest)

	_, err := catalog.UpdatePriority(context.Background(), env.alta.ID, PriorityInput{Key: "alta", Name: "Alta", ResolutionMinutes: 120})
	require.NoError(t, err)

	refreshed, err := env.tickets.RefreshSLA(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(120*time.Minute), *refreshed.SLADeadline)
}

func TestCreateRule(t *testing.T) {
	env := newTestEnv(t)
	catalog := newCatalog(env)
	ctx := context.Background()

	rule, err := catalog.CreateRule(ctx, SLARuleInput{PriorityID: env.baja.ID, TicketType: "incident", TargetMinutes: 60})
	require.NoError(t, err)
	assert.NotZero(t, rule.ID)

	_, err = catalog.CreateRule(ctx, SLARuleInput{PriorityID: env.baja.ID, TicketType: "incident", TargetMinutes: 30})
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	_, err = catalog.CreateRule(ctx, SLARuleInput{PriorityID: 9999, TicketType: "incident", TargetMinutes: 30})
	assert.Equal(t, "unknown priority", fieldErrors(t, err)["priority_id"])

	_, err = catalog.CreateRule(ctx, SLARuleInput{PriorityID: env.alta.ID, TicketType: "outage", TargetMinutes: 30})
	assert.Equal(t, "unknown ticket type", fieldErrors(t, err)["ticket_type"])

	require.NoError(t, catalog.DeleteRule(ctx, rule.ID))
	assert.True(t, apperrors.IsCode(catalog.DeleteRule(ctx, rule.ID), "NOT_FOUND"))
}

func TestAreas(t *testing.T) {
	env := newTestEnv(t)
	catalog := newCatalog(env)
	ctx := context.Background()

	area, err := catalog.CreateArea(ctx, AreaInput{Key: "finance", Name: "Finance", SortOrder: 1})
	require.NoError(t, err)
	_, err = catalog.CreateArea(ctx, AreaInput{Key: "finance", Name: "Finanzas"})
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	_, err = env.tickets.CreateTicket(ctx, env.requester, TicketCreateInput{Title: "Invoice", PriorityID: env.alta.ID, AreaID: &area.ID})
	require.NoError(t, err)

	err = catalog.DeleteArea(ctx, area.ID)
	assert.True(t, apperrors.IsCode(err, "PROTECTED_REFERENCE"))

	empty, err := catalog.CreateArea(ctx, AreaInput{Key: "legal", Name: "Legal"})
	require.NoError(t, err)
	require.NoError(t, catalog.DeleteArea(ctx, empty.ID))

	areas, err := catalog.ListAreas(ctx)
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, "finance", areas[0].Key)
}
