package ports

import (
	"context"
)

// KeyValueStore is the persistence adapter port: an asynchronous
// string-keyed get/set/remove store scoped to the device. Implementations
// live in infrastructure/persistence.
type KeyValueStore interface {
	// Get retrieves the value for a key. The bool reports presence; a
	// missing key is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value under a key, overwriting any previous value
	Set(ctx context.Context, key, value string) error

	// Remove deletes a key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string) error

	// RemoveByPrefix deletes every key with the given prefix. Used to
	// erase an identity's storage namespace on logout.
	RemoveByPrefix(ctx context.Context, prefix string) error
}

// Identity is the authenticated user handle supplied by the identity
// provider. Referenced, never mutated, by the stores.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// IdentityCallback is invoked with the current identity, or nil when the
// identity becomes absent, on every auth transition.
type IdentityCallback func(identity *Identity)

// IdentityProvider is the external auth collaborator contract
type IdentityProvider interface {
	// OnIdentityChange registers a callback for auth transitions. The
	// callback fires immediately with the current state, then on every
	// subsequent change. The returned function cancels the subscription.
	OnIdentityChange(cb IdentityCallback) (unsubscribe func())

	// SignInWithPassword authenticates an existing account
	SignInWithPassword(ctx context.Context, email, password string) (*Identity, error)

	// CreateAccountWithPassword registers a new account and signs it in
	CreateAccountWithPassword(ctx context.Context, email, password, displayName string) (*Identity, error)

	// SignOut clears the current identity
	SignOut(ctx context.Context) error
}
