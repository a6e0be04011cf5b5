package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AuthService coordinates registration and login.
type AuthService struct {
	repos      repository.Repositories
	tx         repository.Transactor
	validator  *validator.Validate
	logger     *zap.Logger
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	Repositories repository.Repositories
	Transactor   repository.Transactor
	Validator    *validator.Validate
	Logger       *zap.Logger
}

// RegisterInput is the self-service signup payload.
type RegisterInput struct {
	Username        string `json:"username" validate:"required,max=150"`
	Email           string `json:"email" validate:"omitempty,email,max=254"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	NationalID      string `json:"national_id" validate:"omitempty,rut"`
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	validate := deps.Validator
	if validate == nil {
		validate = NewValidator()
	}
	return &AuthService{
		repos:      deps.Repositories,
		tx:         deps.Transactor,
		validator:  validate,
		logger:     loggerOrNop(deps.Logger),
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL()),
		bcryptCost: cost,
	}
}

// TokenManager exposes the token manager used by the auth middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates a requester account together with its profile. Failures
// are reported per field and nothing is persisted.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.NationalID = strings.TrimSpace(input.NationalID)
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err)
	}

	fields := map[string]string{}
	if _, err := s.repos.Users.GetByUsername(ctx, input.Username); err == nil {
		fields["username"] = "username already taken"
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	var nationalID *string
	if input.NationalID != "" {
		normalized := apperrors.NormalizeRUT(input.NationalID)
		taken, err := s.repos.Profiles.NationalIDTaken(ctx, normalized, 0)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if taken {
			fields["national_id"] = "national id already registered to another user"
		}
		nationalID = &normalized
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError(fields)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		IsActive:     true,
	}

	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		profile, err := repos.Profiles.GetOrCreate(ctx, user.ID)
		if err != nil {
			return err
		}
		if nationalID == nil {
			return nil
		}
		profile.NationalID = nationalID
		return repos.Profiles.Update(ctx, profile)
	})
	if err != nil {
		if apperrors.IsCode(apperrors.MapError(err), "CONFLICT") {
			return nil, apperrors.NewFieldValidationError(map[string]string{"username": "username already taken"})
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login authenticates a user by username and password. Unknown users and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewFieldValidationError(map[string]string{
			"credentials": "username and password are required",
		})
	}

	user, err := s.repos.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.IsActive {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}
