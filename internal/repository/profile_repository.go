package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ProfileRepository persists helpdesk profiles, one per user.
type ProfileRepository interface {
	GetOrCreate(ctx context.Context, userID int64) (*domain.UserProfile, error)
	Update(ctx context.Context, profile *domain.UserProfile) error
	NationalIDTaken(ctx context.Context, nationalID string, exceptUserID int64) (bool, error)
}

type profileRepository struct {
	db DBTX
}

// NewProfileRepository builds repository.
func NewProfileRepository(db DBTX) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetOrCreate(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	const insert = `
        INSERT INTO user_profiles (user_id) VALUES ($1)
        ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.Exec(ctx, insert, userID); err != nil {
		return nil, err
	}
	const query = `SELECT user_id, is_critical, national_id FROM user_profiles WHERE user_id=$1`
	var profile domain.UserProfile
	if err := r.db.QueryRow(ctx, query, userID).Scan(&profile.UserID, &profile.IsCritical, &profile.NationalID); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.UserProfile) error {
	const query = `UPDATE user_profiles SET is_critical=$1, national_id=$2 WHERE user_id=$3`
	cmd, err := r.db.Exec(ctx, query, profile.IsCritical, profile.NationalID, profile.UserID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepository) NationalIDTaken(ctx context.Context, nationalID string, exceptUserID int64) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_profiles WHERE national_id=$1 AND user_id<>$2)`,
		nationalID, exceptUserID).Scan(&taken)
	return taken, err
}
