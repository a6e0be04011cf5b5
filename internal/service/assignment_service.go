package service

import (
	"math/rand"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AgentPicker selects the agent a new ticket is assigned to. It returns nil when
// the ticket should stay unassigned.
type AgentPicker interface {
	PickAgent(candidates []domain.User) *domain.User
}

// AgentPickerFunc adapts a function to AgentPicker.
type AgentPickerFunc func(candidates []domain.User) *domain.User

// PickAgent implements AgentPicker.
func (f AgentPickerFunc) PickAgent(candidates []domain.User) *domain.User {
	return f(candidates)
}

// RandomAgentPicker picks uniformly among staff-eligible candidates.
type RandomAgentPicker struct {
	intN func(n int) int
}

// NewRandomAgentPicker returns the default picker.
func NewRandomAgentPicker() *RandomAgentPicker {
	return &RandomAgentPicker{intN: rand.Intn}
}

// PickAgent implements AgentPicker.
func (p *RandomAgentPicker) PickAgent(candidates []domain.User) *domain.User {
	eligible := make([]domain.User, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.IsActive && candidate.CanHandleTickets() {
			eligible = append(eligible, candidate)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	picked := eligible[p.intN(len(eligible))]
	return &picked
}
