package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func newProfiles(env *testEnv) *ProfileService {
	return NewProfileService(ProfileDependencies{Repositories: env.db.repos(), Transactor: env.db})
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestEnsureProfileCreatesDefault(t *testing.T) {
	env := newTestEnv(t)
	profile, err := newProfiles(env).EnsureProfile(context.Background(), env.requester)
	require.NoError(t, err)
	assert.Equal(t, domain.UserProfile{UserID: env.requester.ID}, *profile)
}

func TestGetProfileAuthorization(t *testing.T) {
	env := newTestEnv(t)
	profiles := newProfiles(env)
	ctx := context.Background()

	own, err := profiles.GetProfile(ctx, env.requester, env.requester.ID)
	require.NoError(t, err)
	assert.Equal(t, env.requester.ID, own.UserID)

	_, err = profiles.GetProfile(ctx, env.requester, env.agent.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = profiles.GetProfile(ctx, env.agent, 999)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestUpdateProfileValidatesNationalID(t *testing.T) {
	env := newTestEnv(t)
	profiles := newProfiles(env)
	ctx := context.Background()

	_, err := profiles.UpdateProfile(ctx, env.agent, env.requester.ID, ProfileInput{NationalID: strPtr("12345678-9")})
	assert.Contains(t, fieldErrors(t, err), "national_id")

	res, err := profiles.UpdateProfile(ctx, env.agent, env.requester.ID, ProfileInput{NationalID: strPtr("12.345.678-5")})
	require.NoError(t, err)
	require.NotNil(t, res.Profile.NationalID)
	assert.Equal(t, "12345678-5", *res.Profile.NationalID)

	_, err = profiles.UpdateProfile(ctx, env.agent, env.lead.ID, ProfileInput{NationalID: strPtr("12345678-5")})
	assert.Equal(t, "national id already registered to another user", fieldErrors(t, err)["national_id"])

	res, err = profiles.UpdateProfile(ctx, env.agent, env.requester.ID, ProfileInput{NationalID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, res.Profile.NationalID)
}

func TestUpdateProfileSyncsTicketCriticality(t *testing.T) {
	env := newTestEnv(t)
	profiles := newProfiles(env)
	ctx := context.Background()
	first := env.createTicket(t, env.alta, domain.TicketTypeRequest)
	second := env.createTicket(t, env.baja, domain.TicketTypeIncident)

	res, err := profiles.UpdateProfile(ctx, env.agent, env.requester.ID, ProfileInput{IsCritical: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TicketsSynced)
	assert.True(t, env.db.ticket(first.ID).RequesterCritical)
	assert.True(t, env.db.ticket(second.ID).RequesterCritical)

	res, err = profiles.UpdateProfile(ctx, env.agent, env.requester.ID, ProfileInput{IsCritical: boolPtr(true)})
	require.NoError(t, err)
	assert.Zero(t, res.TicketsSynced)
}

func TestUpdateProfileAuthorization(t *testing.T) {
	env := newTestEnv(t)
	profiles := newProfiles(env)

	_, err := profiles.UpdateProfile(context.Background(), env.requester, env.requester.ID, ProfileInput{IsCritical: boolPtr(true)})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = profiles.UpdateProfile(context.Background(), env.agent, 9999, ProfileInput{IsCritical: boolPtr(true)})
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
