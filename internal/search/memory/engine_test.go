package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blomcosmetics/storefront/internal/search"
)

func seedEngine(t *testing.T) *Engine {
	t.Helper()

	e := New()
	docs := []search.Document{
		{ID: "1", Name: "Gel Polish Rose", Description: "Long wear gel polish", Category: "polish", Brand: "blom", Price: 180_00, Status: "published", CreatedAt: time.Now().Add(-3 * time.Hour)},
		{ID: "2", Name: "Gel Polish Nude", Description: "Long wear gel polish", Category: "polish", Brand: "blom", Price: 180_00, Status: "published", CreatedAt: time.Now().Add(-2 * time.Hour)},
		{ID: "3", Name: "Cuticle Oil", Description: "Jojoba cuticle care", Category: "care", Brand: "blom", Price: 150_00, Status: "published", CreatedAt: time.Now().Add(-1 * time.Hour)},
		{ID: "4", Name: "Acrylic Starter Kit", Description: "Everything for a first set", Category: "kits", Brand: "blom", Price: 1200_00, Status: "published", CreatedAt: time.Now()},
		{ID: "5", Name: "Gel Polish Retired", Description: "Discontinued shade", Category: "polish", Brand: "blom", Price: 90_00, Status: "archived", CreatedAt: time.Now()},
	}
	require.NoError(t, e.BulkIndex(context.Background(), docs))
	return e
}

func TestSearch_TermMatchesNameAndDescription(t *testing.T) {
	e := seedEngine(t)

	result, err := e.Search(context.Background(), &search.Query{Term: "gel"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)

	result, err = e.Search(context.Background(), &search.Query{Term: "jojoba"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "Cuticle Oil", result.Products[0].Name)
}

func TestSearch_ExcludesUnpublished(t *testing.T) {
	e := seedEngine(t)

	result, err := e.Search(context.Background(), &search.Query{Term: "retired"})
	require.NoError(t, err)
	assert.Zero(t, result.Total)
}

func TestSearch_Filters(t *testing.T) {
	e := seedEngine(t)
	minPrice := int64(200_00)

	result, err := e.Search(context.Background(), &search.Query{Category: "polish"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)

	result, err = e.Search(context.Background(), &search.Query{MinPrice: &minPrice})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "Acrylic Starter Kit", result.Products[0].Name)
}

func TestSearch_SortByPrice(t *testing.T) {
	e := seedEngine(t)

	result, err := e.Search(context.Background(), &search.Query{SortBy: search.SortPriceAsc})
	require.NoError(t, err)
	require.Equal(t, 4, result.Total)
	assert.Equal(t, "Cuticle Oil", result.Products[0].Name)
	assert.Equal(t, "Acrylic Starter Kit", result.Products[3].Name)
}

func TestSearch_Pagination(t *testing.T) {
	e := seedEngine(t)

	result, err := e.Search(context.Background(), &search.Query{SortBy: search.SortPriceAsc, Page: 2, PerPage: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)
	assert.Len(t, result.Products, 1)
	assert.Equal(t, 2, result.Page)
}

func TestSuggest_PrefixFirst(t *testing.T) {
	e := seedEngine(t)

	names, err := e.Suggest(context.Background(), "gel", 10)
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "Gel Polish Nude", names[0])
	assert.Equal(t, "Gel Polish Rose", names[1])
}

func TestSuggest_ExcludesUnpublishedAndHonorsLimit(t *testing.T) {
	e := seedEngine(t)

	names, err := e.Suggest(context.Background(), "gel", 1)
	require.NoError(t, err)
	assert.Len(t, names, 1)

	names, err = e.Suggest(context.Background(), "retired", 10)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDelete_RemovesDocument(t *testing.T) {
	e := seedEngine(t)

	require.NoError(t, e.Delete(context.Background(), "3"))

	result, err := e.Search(context.Background(), &search.Query{Term: "cuticle"})
	require.NoError(t, err)
	assert.Zero(t, result.Total)

	// Deleting again is not an error.
	assert.NoError(t, e.Delete(context.Background(), "3"))
}
