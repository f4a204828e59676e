package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/pkg/database"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

// CouponRepository implements repository.CouponRepository using PostgreSQL.
type CouponRepository struct {
	pool database.DBTX
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool database.DBTX) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// GetByCode retrieves a coupon by its code. Codes are stored uppercase.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var c domain.Coupon
	err := r.pool.QueryRow(ctx, `
		SELECT id, code, type, value, min_subtotal, expires_at, is_active, created_at
		FROM coupons
		WHERE code = $1`, strings.ToUpper(code)).Scan(
		&c.ID, &c.Code, &c.Type, &c.Value, &c.MinSubtotal, &c.ExpiresAt, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("coupon", code)
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return &c, nil
}

// IncrementRedemptions bumps the redemption counter after a coupon is used
// on a placed order.
func (r *CouponRepository) IncrementRedemptions(ctx context.Context, code string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE coupons SET redemptions = redemptions + 1 WHERE code = $1`,
		strings.ToUpper(code),
	)
	if err != nil {
		return fmt.Errorf("increment coupon redemptions: %w", err)
	}
	return nil
}
