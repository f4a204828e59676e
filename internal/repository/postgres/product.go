// Package postgres contains pgx-backed implementations of the repository
// interfaces.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/internal/repository"
	"github.com/blomcosmetics/storefront/pkg/database"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, slug, description, category_id, brand_id, status,
	base_price, compare_at_price, currency, image_url, tags, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.CategoryID,
		&p.BrandID,
		&p.Status,
		&p.BasePrice,
		&p.CompareAtPrice,
		&p.Currency,
		&p.ImageURL,
		&p.Tags,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, name, slug, description, category_id, brand_id, status, base_price, compare_at_price, currency, image_url, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Slug, p.Description, p.CategoryID, p.BrandID, p.Status,
		p.BasePrice, p.CompareAtPrice, p.Currency, p.ImageURL, p.Tags,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return apperrors.Conflict(fmt.Sprintf("product with slug %q already exists", p.Slug))
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update persists changes to an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, slug = $3, description = $4, category_id = $5, brand_id = $6,
			status = $7, base_price = $8, compare_at_price = $9, currency = $10,
			image_url = $11, tags = $12, updated_at = $13
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Slug, p.Description, p.CategoryID, p.BrandID, p.Status,
		p.BasePrice, p.CompareAtPrice, p.Currency, p.ImageURL, p.Tags, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}
	return nil
}

// Delete archives a product. Rows are kept so historical orders can still
// resolve their product references.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, domain.ProductStatusArchived,
	)
	if err != nil {
		return fmt.Errorf("archive product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetBySlug retrieves a published product by slug, eagerly loading its
// variants and images for the product page.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.ProductDetail, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1 AND status = $2`,
		slug, domain.ProductStatusPublished,
	)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", slug)
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}

	detail := &domain.ProductDetail{Product: *p}

	variantRows, err := r.pool.Query(ctx, `
		SELECT id, product_id, sku, title, option1, option2, option3, price, is_active, created_at
		FROM product_variants
		WHERE product_id = $1 AND is_active = TRUE
		ORDER BY created_at`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer variantRows.Close()

	for variantRows.Next() {
		var v domain.ProductVariant
		if err := variantRows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Title, &v.Option1, &v.Option2, &v.Option3, &v.Price, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		detail.Variants = append(detail.Variants, v)
	}
	if err := variantRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}

	imageRows, err := r.pool.Query(ctx, `
		SELECT id, product_id, url, alt_text, sort_order, is_primary
		FROM product_images
		WHERE product_id = $1
		ORDER BY sort_order`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	defer imageRows.Close()

	for imageRows.Next() {
		var img domain.ProductImage
		if err := imageRows.Scan(&img.ID, &img.ProductID, &img.URL, &img.AltText, &img.SortOrder, &img.IsPrimary); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		detail.Images = append(detail.Images, img)
	}
	if err := imageRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate images: %w", err)
	}

	return detail, nil
}

// List returns published products matching the filter, plus the total count
// for pagination.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]*domain.Product, int64, error) {
	where := []string{"status = $1"}
	args := []any{domain.ProductStatusPublished}

	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.Brand != "" {
		args = append(args, filter.Brand)
		where = append(where, fmt.Sprintf("brand_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.MinPrice > 0 {
		args = append(args, filter.MinPrice)
		where = append(where, fmt.Sprintf("base_price >= $%d", len(args)))
	}
	if filter.MaxPrice > 0 {
		args = append(args, filter.MaxPrice)
		where = append(where, fmt.Sprintf("base_price <= $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM products WHERE ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}

	return products, total, nil
}

// ListBundles returns all active bundles.
func (r *ProductRepository) ListBundles(ctx context.Context) ([]*domain.Bundle, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, slug, product_ids, price, image_url, is_active, created_at
		FROM bundles
		WHERE is_active = TRUE
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query bundles: %w", err)
	}
	defer rows.Close()

	var bundles []*domain.Bundle
	for rows.Next() {
		var b domain.Bundle
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.ProductIDs, &b.Price, &b.ImageURL, &b.IsActive, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bundle: %w", err)
		}
		bundles = append(bundles, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bundles: %w", err)
	}

	return bundles, nil
}
