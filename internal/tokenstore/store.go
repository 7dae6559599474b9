// Package tokenstore persists the local expiry estimate of a client's
// credential so it survives process restarts and page reloads.
package tokenstore

import (
	"context"
	"time"
)

// DefaultKey is the well-known storage key holding the expiry timestamp.
const DefaultKey = "token_expiry"

// Store reads and writes the persisted expiry of the current credential.
type Store interface {
	// GetPersistedExpiry returns the stored expiry, or false when it was never
	// set or has been cleared.
	GetPersistedExpiry(ctx context.Context) (time.Time, bool)
	SetPersistedExpiry(ctx context.Context, expiry time.Time) error
	Clear(ctx context.Context) error
}

// IsLocallyValid reports whether the persisted expiry lies after now. It never
// contacts the server and is only used to decide whether a verification round
// trip is worth attempting.
func IsLocallyValid(ctx context.Context, store Store, now time.Time) bool {
	expiry, ok := store.GetPersistedExpiry(ctx)
	if !ok {
		return false
	}

	return now.Before(expiry)
}
