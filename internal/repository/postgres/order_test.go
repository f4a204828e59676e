package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blomcosmetics/storefront/internal/domain"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

func newOrderTestFixture(t *testing.T) (*OrderRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewOrderRepository(mock)
	return repo, mock
}

func sampleOrder() *domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Order{
		ID:             "ord-1",
		SessionID:      "sess-1",
		Email:          "shopper@example.com",
		Status:         domain.OrderStatusPending,
		PaymentStatus:  domain.PaymentStatusPending,
		SubtotalAmount: 300_00,
		ShippingAmount: 99_00,
		VATAmount:      59_85,
		TotalAmount:    458_85,
		Currency:       "ZAR",
		Items: []domain.OrderItem{
			{
				ID:        "item-1",
				OrderID:   "ord-1",
				ProductID: "p-1",
				Name:      "Gel Polish Rose",
				Price:     150_00,
				Quantity:  2,
			},
		},
		ShippingAddress: &domain.Address{
			FullName:   "Thandi M",
			Line1:      "12 Protea Rd",
			City:       "Cape Town",
			Province:   "Western Cape",
			PostalCode: "8001",
			Country:    "ZA",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func orderColumns() []string {
	return []string{
		"id", "session_id", "user_id", "email", "status", "payment_status",
		"subtotal_amount", "discount_amount", "shipping_amount", "vat_amount",
		"total_amount", "currency", "coupon_code", "shipping_address",
		"pickup_point_id", "created_at", "updated_at", "items",
	}
}

func orderRow(t *testing.T, o *domain.Order) *pgxmock.Rows {
	t.Helper()
	var shippingJSON []byte
	if o.ShippingAddress != nil {
		var err error
		shippingJSON, err = json.Marshal(o.ShippingAddress)
		require.NoError(t, err)
	}
	itemsJSON, err := json.Marshal(o.Items)
	require.NoError(t, err)

	return pgxmock.NewRows(orderColumns()).AddRow(
		o.ID, o.SessionID, o.UserID, o.Email, o.Status, o.PaymentStatus,
		o.SubtotalAmount, o.DiscountAmount, o.ShippingAmount, o.VATAmount,
		o.TotalAmount, o.Currency, o.CouponCode, shippingJSON,
		o.PickupPointID, o.CreatedAt, o.UpdatedAt, itemsJSON,
	)
}

func TestOrderRepository_Create_Success(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	o := sampleOrder()
	shippingJSON, err := json.Marshal(o.ShippingAddress)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(
			o.ID, o.SessionID, o.UserID, o.Email, o.Status, o.PaymentStatus,
			o.SubtotalAmount, o.DiscountAmount, o.ShippingAmount, o.VATAmount,
			o.TotalAmount, o.Currency, o.CouponCode, shippingJSON,
			o.PickupPointID, o.CreatedAt, o.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(
			o.Items[0].ID, o.Items[0].OrderID, o.Items[0].ProductID, o.Items[0].VariantID,
			o.Items[0].Name, o.Items[0].Price, o.Items[0].Quantity, o.Items[0].ImageURL,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err = repo.Create(context.Background(), o)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_RollsBackOnItemFailure(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	o := sampleOrder()
	shippingJSON, err := json.Marshal(o.ShippingAddress)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(
			o.ID, o.SessionID, o.UserID, o.Email, o.Status, o.PaymentStatus,
			o.SubtotalAmount, o.DiscountAmount, o.ShippingAmount, o.VATAmount,
			o.TotalAmount, o.Currency, o.CouponCode, shippingJSON,
			o.PickupPointID, o.CreatedAt, o.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(
			o.Items[0].ID, o.Items[0].OrderID, o.Items[0].ProductID, o.Items[0].VariantID,
			o.Items[0].Name, o.Items[0].Price, o.Items[0].Quantity, o.Items[0].ImageURL,
		).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = repo.Create(context.Background(), o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert order item")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_Success(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	o := sampleOrder()

	mock.ExpectQuery("SELECT(.|\n)+FROM orders o").
		WithArgs(o.ID).
		WillReturnRows(orderRow(t, o))

	got, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, o.SessionID, got.SessionID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Gel Polish Rose", got.Items[0].Name)
	require.NotNil(t, got.ShippingAddress)
	assert.Equal(t, "Cape Town", got.ShippingAddress.City)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT(.|\n)+FROM orders o").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdatePaymentStatus_Success(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("ord-1", domain.OrderStatusPaid, domain.PaymentStatusPaid).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdatePaymentStatus(context.Background(), "ord-1", domain.OrderStatusPaid, domain.PaymentStatusPaid)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdatePaymentStatus_NotFound(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("missing", domain.OrderStatusPaid, domain.PaymentStatusPaid).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdatePaymentStatus(context.Background(), "missing", domain.OrderStatusPaid, domain.PaymentStatusPaid)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ListByUser_Success(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	o := sampleOrder()
	o.UserID = "u-1"

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT(.|\n)+FROM orders").
		WithArgs("u-1", 10, 0).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "session_id", "user_id", "email", "status", "payment_status",
			"subtotal_amount", "discount_amount", "shipping_amount", "vat_amount",
			"total_amount", "currency", "coupon_code", "pickup_point_id",
			"created_at", "updated_at",
		}).AddRow(
			o.ID, o.SessionID, o.UserID, o.Email, o.Status, o.PaymentStatus,
			o.SubtotalAmount, o.DiscountAmount, o.ShippingAmount, o.VATAmount,
			o.TotalAmount, o.Currency, o.CouponCode, o.PickupPointID,
			o.CreatedAt, o.UpdatedAt,
		))

	orders, total, err := repo.ListByUser(context.Background(), "u-1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, "ord-1", orders[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
