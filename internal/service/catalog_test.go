package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/internal/repository"
	"github.com/blomcosmetics/storefront/internal/search"
	searchmemory "github.com/blomcosmetics/storefront/internal/search/memory"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

// --- Mock Repository ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.ProductDetail, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductDetail), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]*domain.Product, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Product), args.Get(1).(int64), args.Error(2)
}

func (m *mockProductRepository) ListBundles(ctx context.Context) ([]*domain.Bundle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Bundle), args.Error(1)
}

// --- Test Helpers ---

func newTestCatalog(repo *mockProductRepository) (*CatalogService, search.Engine) {
	engine := searchmemory.New()
	return NewCatalogService(repo, engine, newTestProducer(), newTestLogger()), engine
}

// --- Tests ---

func TestCreateProduct_Success(t *testing.T) {
	repo := new(mockProductRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)
	svc, _ := newTestCatalog(repo)

	product, err := svc.CreateProduct(context.Background(), &CreateProductInput{
		Name:      "Gel Polish Rosé",
		BasePrice: 180_00,
		Currency:  "zar",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, product.ID)
	assert.Equal(t, "gel-polish-rose", product.Slug)
	assert.Equal(t, "ZAR", product.Currency)
	assert.Equal(t, domain.ProductStatusDraft, product.Status)
	repo.AssertExpectations(t)
}

func TestCreateProduct_Validation(t *testing.T) {
	svc, _ := newTestCatalog(new(mockProductRepository))

	_, err := svc.CreateProduct(context.Background(), &CreateProductInput{BasePrice: 100, Currency: "ZAR"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.CreateProduct(context.Background(), &CreateProductInput{Name: "X", BasePrice: -1, Currency: "ZAR"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.CreateProduct(context.Background(), &CreateProductInput{Name: "X", BasePrice: 100, Currency: "RAND"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateProduct_PublishIndexesProduct(t *testing.T) {
	stored := &domain.Product{
		ID:        "prod-1",
		Name:      "Cuticle Oil",
		Slug:      "cuticle-oil",
		Status:    domain.ProductStatusDraft,
		BasePrice: 150_00,
		Currency:  "ZAR",
	}
	repo := new(mockProductRepository)
	repo.On("GetByID", mock.Anything, "prod-1").Return(stored, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	svc, engine := newTestCatalog(repo)

	published := domain.ProductStatusPublished
	_, err := svc.UpdateProduct(context.Background(), "prod-1", &UpdateProductInput{Status: &published})
	require.NoError(t, err)

	result, err := engine.Search(context.Background(), &search.Query{Term: "cuticle"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
}

func TestUpdateProduct_InvalidStatus(t *testing.T) {
	repo := new(mockProductRepository)
	repo.On("GetByID", mock.Anything, "prod-1").Return(&domain.Product{ID: "prod-1", Name: "X"}, nil)
	svc, _ := newTestCatalog(repo)

	bad := "on-sale"
	_, err := svc.UpdateProduct(context.Background(), "prod-1", &UpdateProductInput{Status: &bad})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestArchiveProduct_RemovesFromIndex(t *testing.T) {
	repo := new(mockProductRepository)
	repo.On("Delete", mock.Anything, "prod-1").Return(nil)
	svc, engine := newTestCatalog(repo)

	require.NoError(t, engine.Index(context.Background(), &search.Document{
		ID: "prod-1", Name: "Cuticle Oil", Status: "published",
	}))

	require.NoError(t, svc.ArchiveProduct(context.Background(), "prod-1"))

	result, err := engine.Search(context.Background(), &search.Query{Term: "cuticle"})
	require.NoError(t, err)
	assert.Zero(t, result.Total)
}

func TestGetProductBySlug_RendersMarkdown(t *testing.T) {
	detail := &domain.ProductDetail{
		Product: domain.Product{
			ID:          "prod-1",
			Name:        "Cuticle Oil",
			Slug:        "cuticle-oil",
			Description: "Cold pressed **jojoba** oil.",
		},
	}
	repo := new(mockProductRepository)
	repo.On("GetBySlug", mock.Anything, "cuticle-oil").Return(detail, nil)
	svc, _ := newTestCatalog(repo)

	got, err := svc.GetProductBySlug(context.Background(), "cuticle-oil")
	require.NoError(t, err)
	assert.Contains(t, got.DescriptionHTML, "<strong>jojoba</strong>")
}

func TestSuggest_ShortPrefixReturnsEmpty(t *testing.T) {
	svc, engine := newTestCatalog(new(mockProductRepository))
	require.NoError(t, engine.Index(context.Background(), &search.Document{
		ID: "prod-1", Name: "Gel Polish", Status: "published",
	}))

	names, err := svc.Suggest(context.Background(), "g", 10)
	require.NoError(t, err)
	assert.Empty(t, names)

	names, err = svc.Suggest(context.Background(), "ge", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gel Polish"}, names)
}

func TestSearchProducts_InvalidSort(t *testing.T) {
	svc, _ := newTestCatalog(new(mockProductRepository))

	_, err := svc.SearchProducts(context.Background(), &search.Query{SortBy: "cheapest"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
