package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/internal/repository"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

const maxReviewBodyLength = 4000

// ReviewService implements product review operations.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		products: products,
		logger:   logger,
	}
}

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	ProductID string
	UserID    string
	Author    string
	Rating    int
	Title     string
	Body      string
}

// SubmitReview validates and stores a new product review.
func (s *ReviewService) SubmitReview(ctx context.Context, input *SubmitReviewInput) (*domain.Review, error) {
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}
	author := strings.TrimSpace(input.Author)
	if author == "" {
		return nil, apperrors.InvalidInput("author name is required")
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, apperrors.InvalidInput("review body is required")
	}
	if len(body) > maxReviewBodyLength {
		return nil, apperrors.InvalidInput("review body is too long")
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product for review: %w", err)
	}
	if product.Status != domain.ProductStatusPublished {
		return nil, apperrors.InvalidInput("product is not open for reviews")
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Author:    author,
		Rating:    input.Rating,
		Title:     strings.TrimSpace(input.Title),
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// ListReviews returns a product's reviews with the aggregate summary.
func (s *ReviewService) ListReviews(ctx context.Context, productID string, limit, offset int) ([]*domain.Review, *domain.ReviewSummary, int64, error) {
	reviews, total, err := s.reviews.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	summary, err := s.reviews.Summary(ctx, productID)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("review summary: %w", err)
	}

	return reviews, summary, total, nil
}
