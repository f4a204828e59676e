package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blomcosmetics/storefront/internal/domain"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed on a single line.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct lines in a cart.
	MaxItemsPerCart = 50
)

const cartKeyPrefix = "cart:"

// CartListener is invoked synchronously after every cart mutation, in
// registration order, with a snapshot of the mutated cart. Listeners must
// not call back into the store.
type CartListener func(ctx context.Context, cart *domain.Cart)

type cartListener struct {
	id int
	fn CartListener
}

// AddItemInput holds the parameters for adding a line to the cart.
type AddItemInput struct {
	ProductID string          `json:"product_id" validate:"required"`
	VariantID string          `json:"variant_id"`
	Name      string          `json:"name" validate:"required,min=1,max=500"`
	Price     int64           `json:"price" validate:"gte=0"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	ImageURL  string          `json:"image_url"`
	Variant   *domain.Variant `json:"variant,omitempty"`
}

// CartStore holds the active carts for all shopper sessions. The in-memory
// map is the source of truth; the backend write after each mutation is
// best-effort. A single instance is constructed by the application root and
// injected into consumers.
type CartStore struct {
	backend Store
	logger  *slog.Logger

	mu        sync.Mutex
	carts     map[string]*domain.Cart
	listeners []cartListener // replaced wholesale on (un)subscribe
	nextSub   int
}

// NewCartStore creates a cart store over the given persistence backend.
func NewCartStore(backend Store, logger *slog.Logger) *CartStore {
	return &CartStore{
		backend: backend,
		logger:  logger,
		carts:   make(map[string]*domain.Cart),
	}
}

// Subscribe registers a listener invoked on every mutation. It returns an
// unsubscribe function.
func (s *CartStore) Subscribe(fn CartListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	// Copy-on-write keeps in-flight notification loops safe from
	// mutation-during-iteration.
	next := make([]cartListener, len(s.listeners)+1)
	copy(next, s.listeners)
	next[len(s.listeners)] = cartListener{id: id, fn: fn}
	s.listeners = next

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		pruned := make([]cartListener, 0, len(s.listeners))
		for _, l := range s.listeners {
			if l.id != id {
				pruned = append(pruned, l)
			}
		}
		s.listeners = pruned
	}
}

// Snapshot returns a defensive copy of the session's cart, hydrating from
// the backend on first access.
func (s *CartStore) Snapshot(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	s.mu.Lock()
	cart := s.hydrate(ctx, sessionID)
	clone := cart.Clone()
	s.mu.Unlock()

	return clone, nil
}

// AddItem adds a line to the session's cart. A line with the same
// product+variant key is merged by increasing its quantity.
func (s *CartStore) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if input.Quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	s.mu.Lock()
	cart := s.hydrate(ctx, sessionID)

	if idx := cart.FindItemIndex(input.ProductID, input.VariantID); idx >= 0 {
		newQty := cart.Items[idx].Quantity + input.Quantity
		if newQty > MaxQuantityPerItem {
			s.mu.Unlock()
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
		cart.Items[idx].Quantity = newQty
		// Refresh display fields in case the catalog changed.
		cart.Items[idx].Price = input.Price
		cart.Items[idx].Name = input.Name
		cart.Items[idx].ImageURL = input.ImageURL
		cart.Items[idx].Variant = input.Variant
	} else {
		if len(cart.Items) >= MaxItemsPerCart {
			s.mu.Unlock()
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ID:        uuid.New().String(),
			ProductID: input.ProductID,
			VariantID: input.VariantID,
			Name:      input.Name,
			Price:     input.Price,
			Quantity:  input.Quantity,
			ImageURL:  input.ImageURL,
			Variant:   input.Variant,
		})
	}

	clone, listeners := s.commit(ctx, cart)
	s.mu.Unlock()

	s.notify(ctx, clone, listeners)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.String("product_id", input.ProductID),
		slog.String("variant_id", input.VariantID),
		slog.Int("quantity", input.Quantity),
	)

	return clone, nil
}

// UpdateQuantity sets a line's quantity directly (no merge). A quantity of
// zero or less removes the line.
func (s *CartStore) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if itemID == "" {
		return nil, apperrors.InvalidInput("item id is required")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	s.mu.Lock()
	cart := s.hydrate(ctx, sessionID)

	idx := cart.FindItemByID(itemID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, apperrors.NotFound("cart item", itemID)
	}

	if quantity <= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = quantity
	}

	clone, listeners := s.commit(ctx, cart)
	s.mu.Unlock()

	s.notify(ctx, clone, listeners)

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("session_id", sessionID),
		slog.String("item_id", itemID),
		slog.Int("quantity", quantity),
	)

	return clone, nil
}

// RemoveItem removes a line from the session's cart.
func (s *CartStore) RemoveItem(ctx context.Context, sessionID, itemID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if itemID == "" {
		return nil, apperrors.InvalidInput("item id is required")
	}

	s.mu.Lock()
	cart := s.hydrate(ctx, sessionID)

	idx := cart.FindItemByID(itemID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, apperrors.NotFound("cart item", itemID)
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	clone, listeners := s.commit(ctx, cart)
	s.mu.Unlock()

	s.notify(ctx, clone, listeners)

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", sessionID),
		slog.String("item_id", itemID),
	)

	return clone, nil
}

// Clear empties the session's cart and issues a fresh cart identifier so a
// new checkout does not collide with a prior one.
func (s *CartStore) Clear(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	s.mu.Lock()
	cart := s.hydrate(ctx, sessionID)

	cart.ID = uuid.New().String()
	cart.Items = []domain.CartItem{}

	clone, listeners := s.commit(ctx, cart)
	s.mu.Unlock()

	s.notify(ctx, clone, listeners)

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", sessionID),
	)

	return clone, nil
}

// hydrate returns the session's live cart, loading it from the backend on
// first access. Corrupted or missing persisted data falls back to an empty
// cart with a freshly generated identifier, never an error. Callers must
// hold s.mu.
func (s *CartStore) hydrate(ctx context.Context, sessionID string) *domain.Cart {
	if cart, ok := s.carts[sessionID]; ok {
		return cart
	}

	cart := s.load(ctx, sessionID)
	s.carts[sessionID] = cart
	return cart
}

func (s *CartStore) load(ctx context.Context, sessionID string) *domain.Cart {
	data, err := s.backend.Load(ctx, cartKeyPrefix+sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to load persisted cart, starting empty",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return s.newCart(sessionID)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		s.logger.WarnContext(ctx, "corrupt persisted cart, starting empty",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return s.newCart(sessionID)
	}

	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	cart.SessionID = sessionID
	cart.RecalculateTotals()
	return &cart
}

func (s *CartStore) newCart(sessionID string) *domain.Cart {
	now := time.Now().UTC()
	cart := &domain.Cart{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Items:     []domain.CartItem{},
		Currency:  "ZAR",
		CreatedAt: now,
		UpdatedAt: now,
	}
	cart.RecalculateTotals()
	return cart
}

// commit recomputes totals, persists best-effort, and returns a snapshot
// plus the listener list for notification. Callers must hold s.mu.
func (s *CartStore) commit(ctx context.Context, cart *domain.Cart) (*domain.Cart, []cartListener) {
	cart.UpdatedAt = time.Now().UTC()
	cart.RecalculateTotals()
	s.persist(ctx, cart)
	return cart.Clone(), s.listeners
}

// persist writes the cart to the backend. A failed write is logged and
// swallowed; the in-memory state remains the source of truth until the next
// successful write.
func (s *CartStore) persist(ctx context.Context, cart *domain.Cart) {
	data, err := json.Marshal(cart)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal cart",
			slog.String("session_id", cart.SessionID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.backend.Save(ctx, cartKeyPrefix+cart.SessionID, data); err != nil {
		s.logger.WarnContext(ctx, "failed to persist cart",
			slog.String("session_id", cart.SessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *CartStore) notify(ctx context.Context, cart *domain.Cart, listeners []cartListener) {
	for _, l := range listeners {
		l.fn(ctx, cart)
	}
}
