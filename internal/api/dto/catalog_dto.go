package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// PriorityResponse representation.
type PriorityResponse struct {
	ID                int64  `json:"id"`
	Key               string `json:"key"`
	Name              string `json:"name"`
	ResolutionMinutes int    `json:"resolution_minutes"`
	SortOrder         int    `json:"sort_order"`
}

// SLARuleResponse representation.
type SLARuleResponse struct {
	ID            int64             `json:"id"`
	PriorityID    int64             `json:"priority_id"`
	TicketType    domain.TicketType `json:"ticket_type"`
	TargetMinutes int               `json:"target_minutes"`
}

// AreaResponse representation.
type AreaResponse struct {
	ID        int64  `json:"id"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func NewPriorityResponse(p *domain.Priority) PriorityResponse {
	return PriorityResponse{ID: p.ID, Key: p.Key, Name: p.Name, ResolutionMinutes: p.ResolutionMinutes, SortOrder: p.SortOrder}
}

func NewSLARuleResponse(r *domain.SLARule) SLARuleResponse {
	return SLARuleResponse{ID: r.ID, PriorityID: r.PriorityID, TicketType: r.TicketType, TargetMinutes: r.TargetMinutes}
}

func NewAreaResponse(a *domain.Area) AreaResponse {
	return AreaResponse{ID: a.ID, Key: a.Key, Name: a.Name, SortOrder: a.SortOrder}
}

// FAQResponse representation.
type FAQResponse struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewFAQResponse(f *domain.FAQ) FAQResponse {
	return FAQResponse{ID: f.ID, Question: f.Question, Answer: f.Answer, Category: f.Category, IsActive: f.IsActive, CreatedAt: f.CreatedAt}
}
