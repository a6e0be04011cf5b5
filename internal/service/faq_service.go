package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// FAQService manages the knowledge base. Everyone signed in can read active
// entries; staff see inactive ones too and are the only editors.
type FAQService struct {
	repos     repository.Repositories
	validator *validator.Validate
	logger    *zap.Logger
}

// FAQDependencies bundles collaborators for the FAQ service.
type FAQDependencies struct {
	Repositories repository.Repositories
	Validator    *validator.Validate
	Logger       *zap.Logger
}

// FAQInput is the create/update payload for an FAQ entry. A blank category
// becomes domain.DefaultFAQCategory and a missing IsActive means active.
type FAQInput struct {
	Question string `json:"question" validate:"required,max=255"`
	Answer   string `json:"answer"`
	Category string `json:"category" validate:"max=50"`
	IsActive *bool  `json:"is_active"`
}

// NewFAQService constructs the service.
func NewFAQService(deps FAQDependencies) *FAQService {
	validate := deps.Validator
	if validate == nil {
		validate = NewValidator()
	}
	return &FAQService{
		repos:     deps.Repositories,
		validator: validate,
		logger:    loggerOrNop(deps.Logger),
	}
}

// List returns entries ordered by id. Non-staff callers only get active ones.
func (s *FAQService) List(ctx context.Context, actor *domain.User, search string) ([]domain.FAQ, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	items, err := s.repos.FAQs.List(ctx, repository.FAQFilter{
		ActiveOnly: !actor.CanHandleTickets(),
		Search:     strings.TrimSpace(search),
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// Create adds an entry.
func (s *FAQService) Create(ctx context.Context, actor *domain.User, input FAQInput) (*domain.FAQ, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	faq := &domain.FAQ{}
	if err := s.apply(faq, input); err != nil {
		return nil, err
	}
	if err := s.repos.FAQs.Create(ctx, faq); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("faq created", zap.Int64("faq_id", faq.ID), zap.Int64("actor_id", actor.ID))
	return faq, nil
}

// Update replaces an entry's editable fields.
func (s *FAQService) Update(ctx context.Context, actor *domain.User, id int64, input FAQInput) (*domain.FAQ, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	faq, err := s.repos.FAQs.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "faq", id)
	}
	if err := s.apply(faq, input); err != nil {
		return nil, err
	}
	if err := s.repos.FAQs.Update(ctx, faq); err != nil {
		return nil, notFoundOr(err, "faq", id)
	}
	return faq, nil
}

// Delete removes an entry.
func (s *FAQService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	if err := s.repos.FAQs.Delete(ctx, id); err != nil {
		return notFoundOr(err, "faq", id)
	}
	s.logger.Info("faq deleted", zap.Int64("faq_id", id), zap.Int64("actor_id", actor.ID))
	return nil
}

func (s *FAQService) apply(faq *domain.FAQ, input FAQInput) error {
	input.Question = strings.TrimSpace(input.Question)
	input.Answer = strings.TrimSpace(input.Answer)
	input.Category = strings.TrimSpace(input.Category)
	if err := s.validator.Struct(input); err != nil {
		return validationError(err)
	}
	if input.Category == "" {
		input.Category = domain.DefaultFAQCategory
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	faq.Question = input.Question
	faq.Answer = input.Answer
	faq.Category = input.Category
	faq.IsActive = active
	return nil
}

func requireStaff(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !actor.CanHandleTickets() {
		return apperrors.NewForbidden("staff role required")
	}
	return nil
}
