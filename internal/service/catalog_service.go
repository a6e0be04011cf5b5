package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// CatalogService manages priorities, SLA rules and functional areas.
type CatalogService struct {
	repos     repository.Repositories
	tx        repository.Transactor
	validator *validator.Validate
	logger    *zap.Logger
}

// CatalogDependencies bundles collaborators for the catalog service.
type CatalogDependencies struct {
	Repositories repository.Repositories
	Transactor   repository.Transactor
	Validator    *validator.Validate
	Logger       *zap.Logger
}

// PriorityInput is the create/update payload for a priority.
type PriorityInput struct {
	Key               string `json:"key" validate:"required,max=50,slug"`
	Name              string `json:"name" validate:"required,max=100"`
	ResolutionMinutes int    `json:"resolution_minutes" validate:"required,gt=0"`
	SortOrder         *int   `json:"sort_order" validate:"omitempty,gte=0"`
}

// SLARuleInput is the create payload for an SLA rule.
type SLARuleInput struct {
	PriorityID    int64  `json:"priority_id" validate:"required,gt=0"`
	TicketType    string `json:"ticket_type" validate:"required,ticket_type"`
	TargetMinutes int    `json:"target_minutes" validate:"required,gt=0"`
}

// AreaInput is the create payload for a functional area.
type AreaInput struct {
	Key       string `json:"key" validate:"required,max=50,slug"`
	Name      string `json:"name" validate:"required,max=100"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	validate := deps.Validator
	if validate == nil {
		validate = NewValidator()
	}
	return &CatalogService{
		repos:     deps.Repositories,
		tx:        deps.Transactor,
		validator: validate,
		logger:    loggerOrNop(deps.Logger),
	}
}

// ListPriorities returns priorities by sort order then name.
func (s *CatalogService) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	items, err := s.repos.Priorities.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// CreatePriority adds a priority; a missing sort order lands it last.
func (s *CatalogService) CreatePriority(ctx context.Context, input PriorityInput) (*domain.Priority, error) {
	input.Key = strings.TrimSpace(input.Key)
	input.Name = strings.TrimSpace(input.Name)
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err)
	}

	priority := &domain.Priority{
		Key:               input.Key,
		Name:              input.Name,
		ResolutionMinutes: input.ResolutionMinutes,
	}
	if input.SortOrder != nil {
		priority.SortOrder = *input.SortOrder
	} else {
		next, err := s.repos.Priorities.NextSortOrder(ctx)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		priority.SortOrder = next
	}

	if err := s.repos.Priorities.Create(ctx, priority); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("priority created", zap.Int64("priority_id", priority.ID), zap.String("key", priority.Key))
	return priority, nil
}

// UpdatePriority edits a priority. Tickets pick up a new budget on their next save.
func (s *CatalogService) UpdatePriority(ctx context.Context, id int64, input PriorityInput) (*domain.Priority, error) {
	input.Key = strings.TrimSpace(input.Key)
	input.Name = strings.TrimSpace(input.Name)
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err)
	}
	priority, err := s.repos.Priorities.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "priority", id)
	}
	priority.Key = input.Key
	priority.Name = input.Name
	priority.ResolutionMinutes = input.ResolutionMinutes
	if input.SortOrder != nil {
		priority.SortOrder = *input.SortOrder
	}
	if err := s.repos.Priorities.Update(ctx, priority); err != nil {
		return nil, notFoundOr(err, "priority", id)
	}
	return priority, nil
}

// DeletePriority removes an unreferenced priority together with its rules.
// Referenced priorities are rejected and nothing is deleted.
func (s *CatalogService) DeletePriority(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Priorities.GetByID(ctx, id); err != nil {
			return notFoundOr(err, "priority", id)
		}
		count, err := repos.Tickets.CountByPriority(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.NewProtected("priority", map[string]any{"id": id, "tickets": count})
		}
		return repos.Priorities.Delete(ctx, id)
	})
	if err != nil {
		return notFoundOr(err, "priority", id)
	}
	return nil
}

// ListRules returns every SLA rule.
func (s *CatalogService) ListRules(ctx context.Context) ([]domain.SLARule, error) {
	items, err := s.repos.Rules.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// CreateRule adds an override for a (priority, ticket type) pair. A second rule
// for the same pair is a conflict.
func (s *CatalogService) CreateRule(ctx context.Context, input SLARuleInput) (*domain.SLARule, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err)
	}
	_, err := s.repos.Priorities.GetByID(ctx, input.PriorityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewFieldValidationError(map[string]string{"priority_id": "unknown priority"})
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticketType := domain.TicketType(input.TicketType)
	existing, err := s.repos.Rules.Find(ctx, input.PriorityID, ticketType)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if existing != nil {
		return nil, apperrors.NewConflict("rule already exists for priority and ticket type", map[string]any{
			"rule_id": existing.ID,
		})
	}

	rule := &domain.SLARule{
		PriorityID:    input.PriorityID,
		TicketType:    ticketType,
		TargetMinutes: input.TargetMinutes,
	}
	if err := s.repos.Rules.Create(ctx, rule); err != nil {
		return nil, apperrors.MapError(err)
	}
	return rule, nil
}

// DeleteRule removes a rule; affected tickets fall back to the priority budget on their next save.
func (s *CatalogService) DeleteRule(ctx context.Context, id int64) error {
	if err := s.repos.Rules.Delete(ctx, id); err != nil {
		return notFoundOr(err, "sla rule", id)
	}
	return nil
}

// ListAreas returns functional areas by sort order.
func (s *CatalogService) ListAreas(ctx context.Context) ([]domain.Area, error) {
	items, err := s.repos.Areas.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// CreateArea adds a functional area.
func (s *CatalogService) CreateArea(ctx context.Context, input AreaInput) (*domain.Area, error) {
	input.Key = strings.TrimSpace(input.Key)
	input.Name = strings.TrimSpace(input.Name)
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err)
	}
	area := &domain.Area{Key: input.Key, Name: input.Name, SortOrder: input.SortOrder}
	if err := s.repos.Areas.Create(ctx, area); err != nil {
		return nil, apperrors.MapError(err)
	}
	return area, nil
}

// DeleteArea removes an area no ticket references.
func (s *CatalogService) DeleteArea(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Areas.GetByID(ctx, id); err != nil {
			return notFoundOr(err, "area", id)
		}
		count, err := repos.Tickets.CountByArea(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.NewProtected("area", map[string]any{"id": id, "tickets": count})
		}
		return repos.Areas.Delete(ctx, id)
	})
	if err != nil {
		return notFoundOr(err, "area", id)
	}
	return nil
}
