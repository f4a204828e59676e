// Package service implements the storefront's business logic on top of the
// repositories, the search engine and the event producer.
package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/internal/event"
	"github.com/blomcosmetics/storefront/internal/repository"
	"github.com/blomcosmetics/storefront/internal/search"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
	"github.com/blomcosmetics/storefront/pkg/slug"
)

// mdRenderer renders product descriptions written in markdown. Raw HTML in
// the input is escaped, so descriptions cannot inject markup.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// CatalogService implements product catalog operations.
type CatalogService struct {
	repo     repository.ProductRepository
	engine   search.Engine
	producer *event.Producer
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.ProductRepository, engine search.Engine, producer *event.Producer, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		engine:   engine,
		producer: producer,
		logger:   logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name           string
	Description    string
	CategoryID     *string
	BrandID        *string
	BasePrice      int64
	CompareAtPrice *int64
	Currency       string
	ImageURL       string
	Tags           []string
}

// UpdateProductInput holds the parameters for updating a product. Nil fields
// are left unchanged.
type UpdateProductInput struct {
	Name           *string
	Description    *string
	CategoryID     *string
	BrandID        *string
	Status         *string
	BasePrice      *int64
	CompareAtPrice *int64
	ImageURL       *string
	Tags           []string
}

// CreateProduct creates a new draft product.
func (s *CatalogService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.BasePrice < 0 {
		return nil, apperrors.InvalidInput("base price must not be negative")
	}
	if len(input.Currency) != 3 {
		return nil, apperrors.InvalidInput("currency must be a 3-letter ISO code")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:             uuid.New().String(),
		Name:           input.Name,
		Slug:           slug.Generate(input.Name),
		Description:    input.Description,
		CategoryID:     input.CategoryID,
		BrandID:        input.BrandID,
		Status:         domain.ProductStatusDraft,
		BasePrice:      input.BasePrice,
		CompareAtPrice: input.CompareAtPrice,
		Currency:       strings.ToUpper(input.Currency),
		ImageURL:       input.ImageURL,
		Tags:           input.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.syncSearchIndex(ctx, product, false)

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

// UpdateProduct applies partial changes to a product.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("product name must not be empty")
		}
		product.Name = *input.Name
		product.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.BrandID != nil {
		product.BrandID = input.BrandID
	}
	if input.Status != nil {
		if !domain.IsValidProductStatus(*input.Status) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid product status %q", *input.Status))
		}
		product.Status = *input.Status
	}
	if input.BasePrice != nil {
		if *input.BasePrice < 0 {
			return nil, apperrors.InvalidInput("base price must not be negative")
		}
		product.BasePrice = *input.BasePrice
	}
	if input.CompareAtPrice != nil {
		product.CompareAtPrice = input.CompareAtPrice
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
	if input.Tags != nil {
		product.Tags = input.Tags
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.syncSearchIndex(ctx, product, product.Status != domain.ProductStatusPublished)

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	return product, nil
}

// ArchiveProduct takes a product off the storefront. The row is kept for
// order history.
func (s *CatalogService) ArchiveProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("archive product: %w", err)
	}

	if err := s.engine.Delete(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "remove product from search index failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}
	s.publishProductChanged(ctx, id, true)

	s.logger.InfoContext(ctx, "product archived", slog.String("product_id", id))
	return nil
}

// GetProduct retrieves a product by ID without rendering.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// GetProductBySlug retrieves a published product with its variants and
// images, rendering the markdown description to HTML for the product page.
func (s *CatalogService) GetProductBySlug(ctx context.Context, productSlug string) (*domain.ProductDetail, error) {
	detail, err := s.repo.GetBySlug(ctx, productSlug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}

	detail.DescriptionHTML, err = renderMarkdown(detail.Description)
	if err != nil {
		// Serve the page with the raw description rather than failing it.
		s.logger.WarnContext(ctx, "render product description failed",
			slog.String("product_id", detail.ID),
			slog.String("error", err.Error()),
		)
	}

	return detail, nil
}

// ListProducts returns published products matching the filter.
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]*domain.Product, int64, error) {
	products, total, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// ListBundles returns the active product bundles.
func (s *CatalogService) ListBundles(ctx context.Context) ([]*domain.Bundle, error) {
	bundles, err := s.repo.ListBundles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	return bundles, nil
}

// SearchProducts runs a full-text search against the search engine.
func (s *CatalogService) SearchProducts(ctx context.Context, query *search.Query) (*search.Result, error) {
	if query.SortBy != "" && !search.IsValidSort(query.SortBy) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid sort option %q", query.SortBy))
	}
	result, err := s.engine.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return result, nil
}

// Suggest returns autocomplete suggestions for the storefront search box.
func (s *CatalogService) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if len(prefix) < 2 {
		return []string{}, nil
	}
	names, err := s.engine.Suggest(ctx, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// syncSearchIndex mirrors a product into the search index. Published
// products are indexed, everything else is removed. Failures are logged and
// do not fail the catalog operation.
func (s *CatalogService) syncSearchIndex(ctx context.Context, product *domain.Product, remove bool) {
	var err error
	if remove {
		err = s.engine.Delete(ctx, product.ID)
	} else {
		err = s.engine.Index(ctx, productToDocument(product))
	}
	if err != nil {
		s.logger.WarnContext(ctx, "sync search index failed",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.publishProductChanged(ctx, product.ID, remove)
}

func (s *CatalogService) publishProductChanged(ctx context.Context, productID string, deleted bool) {
	if err := s.producer.PublishProductChanged(ctx, productID, deleted); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.changed event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
}

func productToDocument(p *domain.Product) *search.Document {
	doc := &search.Document{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.BasePrice,
		Currency:    p.Currency,
		Status:      p.Status,
		ImageURL:    p.ImageURL,
		Tags:        p.Tags,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.CategoryID != nil {
		doc.Category = *p.CategoryID
	}
	if p.BrandID != nil {
		doc.Brand = *p.BrandID
	}
	return doc
}

func renderMarkdown(md string) (string, error) {
	if md == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
