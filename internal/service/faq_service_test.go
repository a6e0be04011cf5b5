package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func newFAQs(env *testEnv) *FAQService {
	return NewFAQService(FAQDependencies{Repositories: env.db.repos()})
}

func TestCreateFAQDefaults(t *testing.T) {
	env := newTestEnv(t)
	faqs := newFAQs(env)

	faq, err := faqs.Create(context.Background(), env.agent, FAQInput{Question: "  How do I reset my password? ", Category: "  "})
	require.NoError(t, err)
	assert.NotZero(t, faq.ID)
	assert.Equal(t, "How do I reset my password?", faq.Question)
	assert.Equal(t, "", faq.Answer)
	assert.Equal(t, domain.DefaultFAQCategory, faq.Category)
	assert.True(t, faq.IsActive)
}

func TestCreateFAQValidation(t *testing.T) {
	env := newTestEnv(t)
	faqs := newFAQs(env)

	_, err := faqs.Create(context.Background(), env.agent, FAQInput{
		Question: "   ",
		Category: strings.Repeat("c", 51),
	})
	fields := fieldErrors(t, err)
	assert.Equal(t, "is required", fields["question"])
	assert.Equal(t, "must be at most 50 characters", fields["category"])

	_, err = faqs.Create(context.Background(), env.agent, FAQInput{Question: strings.Repeat("q", 256)})
	fields = fieldErrors(t, err)
	assert.Contains(t, fields, "question")
	assert.Empty(t, env.db.faqs)
}

func TestFAQMutationsRequireStaff(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	faqs := newFAQs(env)
	faq, err := faqs.Create(ctx, env.lead, FAQInput{Question: "VPN setup"})
	require.NoError(t, err)

	_, err = faqs.Create(ctx, env.requester, FAQInput{Question: "Mine"})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	_, err = faqs.Update(ctx, env.requester, faq.ID, FAQInput{Question: "Edited"})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	assert.True(t, apperrors.IsCode(faqs.Delete(ctx, env.requester, faq.ID), "FORBIDDEN"))
	assert.Equal(t, "VPN setup", env.db.faqs[faq.ID].Question)
}

func TestUpdateAndDeleteFAQ(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	faqs := newFAQs(env)
	faq, err := faqs.Create(ctx, env.agent, FAQInput{Question: "VPN setup", Category: "Network"})
	require.NoError(t, err)

	updated, err := faqs.Update(ctx, env.agent, faq.ID, FAQInput{
		Question: "VPN setup on Linux",
		Answer:   "Install the client first.",
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "VPN setup on Linux", updated.Question)
	assert.Equal(t, domain.DefaultFAQCategory, updated.Category)
	assert.False(t, env.db.faqs[faq.ID].IsActive)

	require.NoError(t, faqs.Delete(ctx, env.agent, faq.ID))
	assert.Empty(t, env.db.faqs)

	_, err = faqs.Update(ctx, env.agent, faq.ID, FAQInput{Question: "again"})
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	assert.True(t, apperrors.IsCode(faqs.Delete(ctx, env.agent, faq.ID), "NOT_FOUND"))
}

func TestListFAQsVisibilityAndSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	faqs := newFAQs(env)
	printer, err := faqs.Create(ctx, env.agent, FAQInput{Question: "Printer offline", Answer: "Power cycle it."})
	require.NoError(t, err)
	hidden, err := faqs.Create(ctx, env.agent, FAQInput{Question: "Draft: printer drivers", IsActive: boolPtr(false)})
	require.NoError(t, err)
	vpn, err := faqs.Create(ctx, env.agent, FAQInput{Question: "VPN access", Answer: "Ask for a PRINTER-free token."})
	require.NoError(t, err)

	ids := func(items []domain.FAQ) []int64 {
		out := make([]int64, 0, len(items))
		for _, item := range items {
			out = append(out, item.ID)
		}
		return out
	}

	all, err := faqs.List(ctx, env.requester, "")
	require.NoError(t, err)
	assert.Equal(t, []int64{printer.ID, vpn.ID}, ids(all))

	staff, err := faqs.List(ctx, env.agent, "")
	require.NoError(t, err)
	assert.Equal(t, []int64{printer.ID, hidden.ID, vpn.ID}, ids(staff))

	found, err := faqs.List(ctx, env.requester, " printer ")
	require.NoError(t, err)
	assert.Equal(t, []int64{printer.ID, vpn.ID}, ids(found), "matches question or answer")

	_, err = faqs.List(ctx, nil, "")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}
