package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/internal/repository"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

func newProductTestFixture(t *testing.T) (*ProductRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewProductRepository(mock)
	return repo, mock
}

func sampleProduct() *domain.Product {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Product{
		ID:          "prod-1",
		Name:        "Gel Polish Rose",
		Slug:        "gel-polish-rose",
		Description: "A warm rose gel polish.",
		Status:      domain.ProductStatusPublished,
		BasePrice:   150_00,
		Currency:    "ZAR",
		Tags:        []string{"gel", "polish"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func productColumnNames() []string {
	return []string{
		"id", "name", "slug", "description", "category_id", "brand_id", "status",
		"base_price", "compare_at_price", "currency", "image_url", "tags",
		"created_at", "updated_at",
	}
}

func productRow(p *domain.Product) *pgxmock.Rows {
	return pgxmock.NewRows(productColumnNames()).AddRow(
		p.ID, p.Name, p.Slug, p.Description, p.CategoryID, p.BrandID, p.Status,
		p.BasePrice, p.CompareAtPrice, p.Currency, p.ImageURL, p.Tags,
		p.CreatedAt, p.UpdatedAt,
	)
}

func TestProductRepository_Create_Success(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()

	mock.ExpectExec("INSERT INTO products").
		WithArgs(
			p.ID, p.Name, p.Slug, p.Description, p.CategoryID, p.BrandID, p.Status,
			p.BasePrice, p.CompareAtPrice, p.Currency, p.ImageURL, p.Tags,
			p.CreatedAt, p.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), p)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Create_DuplicateSlug(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()

	mock.ExpectExec("INSERT INTO products").
		WithArgs(
			p.ID, p.Name, p.Slug, p.Description, p.CategoryID, p.BrandID, p.Status,
			p.BasePrice, p.CompareAtPrice, p.Currency, p.ImageURL, p.Tags,
			p.CreatedAt, p.UpdatedAt,
		).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "products_slug_key"`))

	err := repo.Create(context.Background(), p)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_Success(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()

	mock.ExpectQuery("SELECT(.|\n)+FROM products WHERE id =").
		WithArgs(p.ID).
		WillReturnRows(productRow(p))

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Slug, got.Slug)
	assert.Equal(t, p.Tags, got.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT(.|\n)+FROM products WHERE id =").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()

	mock.ExpectExec("UPDATE products").
		WithArgs(
			p.ID, p.Name, p.Slug, p.Description, p.CategoryID, p.BrandID, p.Status,
			p.BasePrice, p.CompareAtPrice, p.Currency, p.ImageURL, p.Tags, p.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), p)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Delete_Archives(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE products SET status").
		WithArgs("prod-1", domain.ProductStatusArchived).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Delete(context.Background(), "prod-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_WithFilters(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()
	minPrice := int64(100_00)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(domain.ProductStatusPublished, "nail-care", minPrice).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT(.|\n)+FROM products WHERE").
		WithArgs(domain.ProductStatusPublished, "nail-care", minPrice, 24, 0).
		WillReturnRows(productRow(p))

	products, total, err := repo.List(context.Background(), repository.ProductFilter{
		Category: "nail-care",
		MinPrice: minPrice,
	}, 24, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, "prod-1", products[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
