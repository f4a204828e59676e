package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/blomcosmetics/storefront/internal/domain"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

const wishlistKeyPrefix = "wishlist:"

// WishlistListener is invoked synchronously after every wishlist mutation,
// in registration order, with a snapshot of the mutated wishlist.
type WishlistListener func(ctx context.Context, wishlist *domain.Wishlist)

type wishlistListener struct {
	id int
	fn WishlistListener
}

// WishlistItemInput holds the parameters for saving a product.
type WishlistItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Name      string `json:"name" validate:"required,min=1,max=500"`
	Price     int64  `json:"price" validate:"gte=0"`
	ImageURL  string `json:"image_url"`
	Slug      string `json:"slug"`
}

// WishlistStore tracks saved-for-later products per session with toggle
// semantics: at most one entry per product. Persistence and fallback
// behavior mirror the cart store.
type WishlistStore struct {
	backend Store
	logger  *slog.Logger

	mu        sync.Mutex
	wishlists map[string]*domain.Wishlist
	listeners []wishlistListener
	nextSub   int
}

// NewWishlistStore creates a wishlist store over the given backend.
func NewWishlistStore(backend Store, logger *slog.Logger) *WishlistStore {
	return &WishlistStore{
		backend:   backend,
		logger:    logger,
		wishlists: make(map[string]*domain.Wishlist),
	}
}

// Subscribe registers a listener invoked on every mutation. It returns an
// unsubscribe function.
func (s *WishlistStore) Subscribe(fn WishlistListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	next := make([]wishlistListener, len(s.listeners)+1)
	copy(next, s.listeners)
	next[len(s.listeners)] = wishlistListener{id: id, fn: fn}
	s.listeners = next

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		pruned := make([]wishlistListener, 0, len(s.listeners))
		for _, l := range s.listeners {
			if l.id != id {
				pruned = append(pruned, l)
			}
		}
		s.listeners = pruned
	}
}

// Add saves a product. Returns true if it was newly added, false if it was
// already present.
func (s *WishlistStore) Add(ctx context.Context, sessionID string, input WishlistItemInput) (bool, error) {
	if sessionID == "" {
		return false, apperrors.InvalidInput("session id is required")
	}
	if input.ProductID == "" {
		return false, apperrors.InvalidInput("product id is required")
	}

	s.mu.Lock()
	wl := s.hydrate(ctx, sessionID)

	if wl.FindItemIndex(input.ProductID) >= 0 {
		s.mu.Unlock()
		return false, nil
	}

	wl.Items = append(wl.Items, domain.WishlistItem{
		ProductID: input.ProductID,
		Name:      input.Name,
		Price:     input.Price,
		ImageURL:  input.ImageURL,
		Slug:      input.Slug,
		AddedAt:   time.Now().UTC(),
	})

	clone, listeners := s.commit(ctx, wl)
	s.mu.Unlock()

	s.notify(ctx, clone, listeners)

	s.logger.InfoContext(ctx, "product added to wishlist",
		slog.String("session_id", sessionID),
		slog.String("product_id", input.ProductID),
	)

	return true, nil
}

// Remove deletes a saved product. Returns true if something was removed.
func (s *WishlistStore) Remove(ctx context.Context, sessionID, productID string) (bool, error) {
	if sessionID == "" {
		return false, apperrors.InvalidInput("session id is required")
	}
	if productID == "" {
		return false, apperrors.InvalidInput("product id is required")
	}

	s.mu.Lock()
	wl := s.hydrate(ctx, sessionID)

	idx := wl.FindItemIndex(productID)
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}

	wl.Items = append(wl.Items[:idx], wl.Items[idx+1:]...)

	clone, listeners := s.commit(ctx, wl)
	s.mu.Unlock()

	s.notify(ctx, clone, listeners)

	s.logger.InfoContext(ctx, "product removed from wishlist",
		slog.String("session_id", sessionID),
		slog.String("product_id", productID),
	)

	return true, nil
}

// Toggle adds the product if absent and removes it if present. Returns the
// resulting membership state (true = now present).
func (s *WishlistStore) Toggle(ctx context.Context, sessionID string, input WishlistItemInput) (bool, error) {
	present, err := s.Contains(ctx, sessionID, input.ProductID)
	if err != nil {
		return false, err
	}

	if present {
		if _, err := s.Remove(ctx, sessionID, input.ProductID); err != nil {
			return true, err
		}
		return false, nil
	}

	if _, err := s.Add(ctx, sessionID, input); err != nil {
		return false, err
	}
	return true, nil
}

// Contains reports whether the product is saved.
func (s *WishlistStore) Contains(ctx context.Context, sessionID, productID string) (bool, error) {
	if sessionID == "" {
		return false, apperrors.InvalidInput("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wl := s.hydrate(ctx, sessionID)
	return wl.FindItemIndex(productID) >= 0, nil
}

// Items returns a defensive copy of the session's saved products.
func (s *WishlistStore) Items(ctx context.Context, sessionID string) ([]domain.WishlistItem, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wl := s.hydrate(ctx, sessionID)
	items := make([]domain.WishlistItem, len(wl.Items))
	copy(items, wl.Items)
	return items, nil
}

// Count returns the number of saved products.
func (s *WishlistStore) Count(ctx context.Context, sessionID string) (int, error) {
	if sessionID == "" {
		return 0, apperrors.InvalidInput("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.hydrate(ctx, sessionID).Items), nil
}

// Clear removes all saved products for the session.
func (s *WishlistStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	s.mu.Lock()
	wl := s.hydrate(ctx, sessionID)
	wl.Items = []domain.WishlistItem{}

	clone, listeners := s.commit(ctx, wl)
	s.mu.Unlock()

	s.notify(ctx, clone, listeners)

	s.logger.InfoContext(ctx, "wishlist cleared",
		slog.String("session_id", sessionID),
	)

	return nil
}

// hydrate returns the live wishlist, loading from the backend on first
// access. Callers must hold s.mu.
func (s *WishlistStore) hydrate(ctx context.Context, sessionID string) *domain.Wishlist {
	if wl, ok := s.wishlists[sessionID]; ok {
		return wl
	}

	wl := s.load(ctx, sessionID)
	s.wishlists[sessionID] = wl
	return wl
}

func (s *WishlistStore) load(ctx context.Context, sessionID string) *domain.Wishlist {
	empty := &domain.Wishlist{
		SessionID: sessionID,
		Items:     []domain.WishlistItem{},
		UpdatedAt: time.Now().UTC(),
	}

	data, err := s.backend.Load(ctx, wishlistKeyPrefix+sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to load persisted wishlist, starting empty",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return empty
	}

	var wl domain.Wishlist
	if err := json.Unmarshal(data, &wl); err != nil {
		s.logger.WarnContext(ctx, "corrupt persisted wishlist, starting empty",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return empty
	}

	if wl.Items == nil {
		wl.Items = []domain.WishlistItem{}
	}
	wl.SessionID = sessionID
	return &wl
}

func (s *WishlistStore) commit(ctx context.Context, wl *domain.Wishlist) (*domain.Wishlist, []wishlistListener) {
	wl.UpdatedAt = time.Now().UTC()
	s.persist(ctx, wl)
	return wl.Clone(), s.listeners
}

func (s *WishlistStore) persist(ctx context.Context, wl *domain.Wishlist) {
	data, err := json.Marshal(wl)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal wishlist",
			slog.String("session_id", wl.SessionID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.backend.Save(ctx, wishlistKeyPrefix+wl.SessionID, data); err != nil {
		s.logger.WarnContext(ctx, "failed to persist wishlist",
			slog.String("session_id", wl.SessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *WishlistStore) notify(ctx context.Context, wl *domain.Wishlist, listeners []wishlistListener) {
	for _, l := range listeners {
		l.fn(ctx, wl)
	}
}
