package domain

import "context"

// SessionKeyRepository is the abstraction for any kind of database intended
// to persist SessionKeys.
type SessionKeyRepository interface {
	// AddSessionKey persists a new session key. It returns
	// ErrSessionKeyAlreadyExists if the id is already taken.
	AddSessionKey(ctx context.Context, key *SessionKey) error
	// GetSessionKey returns the session key with the given id, regardless of
	// its status.
	GetSessionKey(ctx context.Context, id string) (*SessionKey, error)
	// GetSessionKeysForAccount returns every key ever created for the account.
	GetSessionKeysForAccount(
		ctx context.Context, accountAddress string,
	) ([]SessionKey, error)
	// UpdateSessionKey atomically applies updateFn to the stored key and
	// persists the result.
	UpdateSessionKey(
		ctx context.Context,
		id string,
		updateFn func(key *SessionKey) (*SessionKey, error),
	) error
}
