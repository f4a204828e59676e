// Package memory implements search.Engine with an in-process index. It backs
// local development and tests where no Elasticsearch cluster is available.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blomcosmetics/storefront/internal/search"
)

// Engine is an in-memory implementation of search.Engine using simple
// substring matching on name and description. Safe for concurrent use.
type Engine struct {
	mu   sync.RWMutex
	docs map[string]search.Document
}

// New creates a new in-memory search engine.
func New() *Engine {
	return &Engine{
		docs: make(map[string]search.Document),
	}
}

// Index adds or updates a single product document.
func (e *Engine) Index(_ context.Context, doc *search.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.docs[doc.ID] = *doc
	return nil
}

// Delete removes a product document by its ID.
func (e *Engine) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.docs, id)
	return nil
}

// Search executes a query against the in-memory index.
func (e *Engine) Search(_ context.Context, query *search.Query) (*search.Result, error) {
	start := time.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	term := strings.ToLower(query.Term)

	matched := make([]search.Document, 0)
	for _, d := range e.docs {
		if e.matches(d, query, term) {
			matched = append(matched, d)
		}
	}

	sortDocs(matched, query.SortBy, term)

	total := len(matched)
	page, perPage := normalizePage(query.Page, query.PerPage)

	offset := (page - 1) * perPage
	if offset > total {
		offset = total
	}
	end := offset + perPage
	if end > total {
		end = total
	}

	return &search.Result{
		Products: matched[offset:end],
		Total:    total,
		Page:     page,
		PerPage:  perPage,
		TookMs:   time.Since(start).Milliseconds(),
	}, nil
}

// Suggest returns unique published product names with the given prefix,
// falling back to substring matches when prefixes run out.
func (e *Engine) Suggest(_ context.Context, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	prefix = strings.ToLower(prefix)

	var prefixed, contained []string
	for _, d := range e.docs {
		if d.Status != "published" {
			continue
		}
		name := strings.ToLower(d.Name)
		switch {
		case strings.HasPrefix(name, prefix):
			prefixed = append(prefixed, d.Name)
		case strings.Contains(name, prefix):
			contained = append(contained, d.Name)
		}
	}

	sort.Strings(prefixed)
	sort.Strings(contained)

	names := append(prefixed, contained...)
	if len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

// BulkIndex adds or updates multiple product documents.
func (e *Engine) BulkIndex(_ context.Context, docs []search.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range docs {
		e.docs[docs[i].ID] = docs[i]
	}
	return nil
}

func (e *Engine) matches(d search.Document, query *search.Query, term string) bool {
	if d.Status != "published" {
		return false
	}
	if term != "" {
		name := strings.ToLower(d.Name)
		desc := strings.ToLower(d.Description)
		if !strings.Contains(name, term) && !strings.Contains(desc, term) {
			return false
		}
	}
	if query.Category != "" && d.Category != query.Category {
		return false
	}
	if query.Brand != "" && d.Brand != query.Brand {
		return false
	}
	if query.MinPrice != nil && d.Price < *query.MinPrice {
		return false
	}
	if query.MaxPrice != nil && d.Price > *query.MaxPrice {
		return false
	}
	return true
}

func sortDocs(docs []search.Document, sortBy, term string) {
	switch sortBy {
	case search.SortPriceAsc:
		sort.Slice(docs, func(i, j int) bool { return docs[i].Price < docs[j].Price })
	case search.SortPriceDesc:
		sort.Slice(docs, func(i, j int) bool { return docs[i].Price > docs[j].Price })
	case search.SortNewest:
		sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	default:
		// Approximate relevance: name hits rank above description hits,
		// then alphabetical for stable output.
		sort.Slice(docs, func(i, j int) bool {
			iName := strings.Contains(strings.ToLower(docs[i].Name), term)
			jName := strings.Contains(strings.ToLower(docs[j].Name), term)
			if iName != jName {
				return iName
			}
			return docs[i].Name < docs[j].Name
		})
	}
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
