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

// ProfileService owns the per-user helpdesk profile.
type ProfileService struct {
	repos     repository.Repositories
	tx        repository.Transactor
	validator *validator.Validate
	logger    *zap.Logger
}

// ProfileDependencies bundles collaborators for the profile service.
type ProfileDependencies struct {
	Repositories repository.Repositories
	Transactor   repository.Transactor
	Validator    *validator.Validate
	Logger       *zap.Logger
}

// ProfileInput is a partial profile update; nil fields are left untouched.
// An empty NationalID clears it.
type ProfileInput struct {
	IsCritical *bool   `json:"is_critical"`
	NationalID *string `json:"national_id" validate:"omitempty,rut"`
}

// ProfileUpdateResult reports the stored profile and how many tickets had
// their criticality mirror resynchronized.
type ProfileUpdateResult struct {
	Profile       *domain.UserProfile
	TicketsSynced int64
}

// NewProfileService constructs the service.
func NewProfileService(deps ProfileDependencies) *ProfileService {
	validate := deps.Validator
	if validate == nil {
		validate = NewValidator()
	}
	return &ProfileService{
		repos:     deps.Repositories,
		tx:        deps.Transactor,
		validator: validate,
		logger:    loggerOrNop(deps.Logger),
	}
}

// EnsureProfile returns the user's profile, creating a default one if absent.
func (s *ProfileService) EnsureProfile(ctx context.Context, user *domain.User) (*domain.UserProfile, error) {
	profile, err := s.repos.Profiles.GetOrCreate(ctx, user.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return profile, nil
}

// GetProfile returns userID's profile. Staff may read any profile, other users
// only their own.
func (s *ProfileService) GetProfile(ctx context.Context, actor *domain.User, userID int64) (*domain.UserProfile, error) {
	if !actor.CanHandleTickets() && actor.ID != userID {
		return nil, apperrors.NewForbidden("cannot view another user's profile")
	}
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", userID)
	}
	return s.EnsureProfile(ctx, user)
}

// UpdateProfile edits a user's profile. Only staff may call it. When the
// criticality flag changes every ticket of that requester is resynced in the
// same transaction.
func (s *ProfileService) UpdateProfile(ctx context.Context, actor *domain.User, userID int64, input ProfileInput) (*ProfileUpdateResult, error) {
	if !actor.CanHandleTickets() {
		return nil, apperrors.NewForbidden("only staff can edit profiles")
	}
	if input.NationalID != nil {
		trimmed := strings.TrimSpace(*input.NationalID)
		input.NationalID = &trimmed
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err)
	}
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return nil, notFoundOr(err, "user", userID)
	}

	var nationalID *string
	if input.NationalID != nil && *input.NationalID != "" {
		normalized := apperrors.NormalizeRUT(*input.NationalID)
		taken, err := s.repos.Profiles.NationalIDTaken(ctx, normalized, userID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if taken {
			return nil, apperrors.NewFieldValidationError(map[string]string{
				"national_id": "national id already registered to another user",
			})
		}
		nationalID = &normalized
	}

	result := &ProfileUpdateResult{}
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		profile, err := repos.Profiles.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		criticalChanged := input.IsCritical != nil && *input.IsCritical != profile.IsCritical
		if input.IsCritical != nil {
			profile.IsCritical = *input.IsCritical
		}
		if input.NationalID != nil {
			profile.NationalID = nationalID
		}
		if err := repos.Profiles.Update(ctx, profile); err != nil {
			return err
		}
		if criticalChanged {
			synced, err := repos.Tickets.SetRequesterCritical(ctx, userID, profile.IsCritical)
			if err != nil {
				return err
			}
			result.TicketsSynced = synced
		}
		result.Profile = profile
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if result.TicketsSynced > 0 {
		s.logger.Info("requester criticality synced",
			zap.Int64("user_id", userID),
			zap.Bool("critical", result.Profile.IsCritical),
			zap.Int64("tickets", result.TicketsSynced))
	}
	return result, nil
}
