package domain

import "context"

// KeystoreRepository is the persisted-store contract shared by every storage
// backend. All operations are local and side-effect-only on the underlying
// store; lookup misses return nil, never an error.
type KeystoreRepository interface {
	// GetActiveHash returns the identity hash of the currently open keystore,
	// or the empty string if no keystore is open.
	GetActiveHash(ctx context.Context) (string, error)
	// SetActiveHash points the store at the given keystore. An empty hash
	// clears the pointer.
	SetActiveHash(ctx context.Context, hash string) error
	// GetKeystore returns the record stored under the given hash, or nil.
	GetKeystore(ctx context.Context, hash string) (*Keystore, error)
	// PutKeystore inserts or replaces the record stored under the given hash.
	PutKeystore(ctx context.Context, hash string, keystore *Keystore) error
	// GetCurrentKeystore resolves the record referenced by the active hash,
	// or nil if no keystore is open or the record is missing.
	GetCurrentKeystore(ctx context.Context) (*Keystore, error)
}
