package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/pkg/database"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

// ProfileRepository implements repository.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	pool database.DBTX
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(pool database.DBTX) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Get retrieves a profile by user ID.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, email, first_name, last_name, phone, marketing_opt_in, created_at, updated_at
		FROM profiles
		WHERE user_id = $1`, userID).Scan(
		&p.UserID, &p.Email, &p.FirstName, &p.LastName, &p.Phone,
		&p.MarketingOptIn, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("profile", userID)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// Upsert creates the profile row on first write and updates it afterwards.
// Profiles mirror the hosted auth provider, so the first authenticated
// request seeds the row.
func (r *ProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, email, first_name, last_name, phone, marketing_opt_in, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE
		SET email = EXCLUDED.email, first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name, phone = EXCLUDED.phone,
			marketing_opt_in = EXCLUDED.marketing_opt_in, updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		p.UserID, p.Email, p.FirstName, p.LastName, p.Phone,
		p.MarketingOptIn, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
