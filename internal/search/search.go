// Package search defines the product search engine interface and its
// document model. Implementations live in the elasticsearch and memory
// subpackages.
package search

import (
	"context"
	"time"
)

// Document is a product as stored in the search index.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Brand       string    `json:"brand"`
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	ImageURL    string    `json:"image_url"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Sort options for search results.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
)

// IsValidSort checks whether the given sort string is a valid sort option.
func IsValidSort(sort string) bool {
	switch sort {
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortNewest:
		return true
	}
	return false
}

// Query holds all parameters for a search request.
type Query struct {
	Term     string `json:"term"`
	Category string `json:"category,omitempty"`
	Brand    string `json:"brand,omitempty"`
	MinPrice *int64 `json:"min_price,omitempty"`
	MaxPrice *int64 `json:"max_price,omitempty"`
	SortBy   string `json:"sort_by"`
	Page     int    `json:"page"`
	PerPage  int    `json:"per_page"`
}

// Result holds the paginated search response.
type Result struct {
	Products []Document `json:"products"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PerPage  int        `json:"per_page"`
	TookMs   int64      `json:"took_ms"`
}

// Engine indexes and searches product documents.
type Engine interface {
	// Index adds or updates a single product in the index.
	Index(ctx context.Context, doc *Document) error

	// Delete removes a product from the index by its ID. Deleting a
	// document that is not indexed is not an error.
	Delete(ctx context.Context, id string) error

	// Search executes a query and returns matching products.
	Search(ctx context.Context, query *Query) (*Result, error)

	// Suggest returns autocomplete product names for the given prefix.
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)

	// BulkIndex adds or updates multiple products in the index.
	BulkIndex(ctx context.Context, docs []Document) error
}
