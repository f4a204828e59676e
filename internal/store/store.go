// Package store implements the session-scoped cart and wishlist state
// containers. The in-memory state is the source of truth; every mutation is
// persisted best-effort to a backing Store and announced synchronously to
// subscribers.
package store

import "context"

// Store is the persistence backend for session state: JSON blobs keyed by
// session-scoped keys. It is the service-side analogue of browser local
// storage: writes are best-effort and last writer wins.
type Store interface {
	// Load retrieves the blob for the key. Returns apperrors.ErrNotFound
	// (wrapped) when no value exists.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save persists the blob, overwriting any existing value.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes the blob for the key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error
}
