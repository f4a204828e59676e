package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blomcosmetics/storefront/internal/domain"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

func newCouponTestFixture(t *testing.T) (*CouponRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewCouponRepository(mock)
	return repo, mock
}

func TestCouponRepository_GetByCode_UppercasesCode(t *testing.T) {
	repo, mock := newCouponTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)
	expires := now.Add(72 * time.Hour)

	mock.ExpectQuery("SELECT(.|\n)+FROM coupons").
		WithArgs("SPRING10").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "code", "type", "value", "min_subtotal", "expires_at", "is_active", "created_at",
		}).AddRow(
			"coup-1", "SPRING10", domain.CouponTypePercent, int64(10), int64(500_00), &expires, true, now,
		))

	c, err := repo.GetByCode(context.Background(), "spring10")
	require.NoError(t, err)
	assert.Equal(t, "SPRING10", c.Code)
	assert.Equal(t, int64(10), c.Value)
	assert.True(t, c.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponRepository_GetByCode_NotFound(t *testing.T) {
	repo, mock := newCouponTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT(.|\n)+FROM coupons").
		WithArgs("NOPE").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByCode(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponRepository_IncrementRedemptions(t *testing.T) {
	repo, mock := newCouponTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE coupons SET redemptions").
		WithArgs("SPRING10").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.IncrementRedemptions(context.Background(), "spring10")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
