package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestRandomAgentPickerNoCandidates(t *testing.T) {
	picker := NewRandomAgentPicker()
	require.Nil(t, picker.PickAgent(nil))
	require.Nil(t, picker.PickAgent([]domain.User{{ID: 1, IsActive: true}}))
}

func TestRandomAgentPickerSkipsIneligible(t *testing.T) {
	picker := &RandomAgentPicker{intN: func(n int) int { return n - 1 }}
	candidates := []domain.User{
		{ID: 1, IsActive: true, IsStaff: true},
		{ID: 2, IsActive: false, IsStaff: true},
		{ID: 3, IsActive: true},
		{ID: 4, IsActive: true, IsSuperuser: true},
	}
	picked := picker.PickAgent(candidates)
	require.NotNil(t, picked)
	require.Equal(t, int64(4), picked.ID)
}

func TestRandomAgentPickerCoversAllCandidates(t *testing.T) {
	picker := NewRandomAgentPicker()
	candidates := []domain.User{
		{ID: 1, IsActive: true, IsStaff: true},
		{ID: 2, IsActive: true, IsStaff: true},
	}
	seen := map[int64]bool{}
	for i := 0; i < 200 && len(seen) < 2; i++ {
		seen[picker.PickAgent(candidates).ID] = true
	}
	require.Len(t, seen, 2)
}
