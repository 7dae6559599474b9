package tokenstore

import (
	"context"
	"time"

	"github.com/alexedwards/scs/v2"
)

// SessionStore keeps the expiry in the caller's server-side session as an
// RFC 3339 string. The context must carry a session loaded by scs.
type SessionStore struct {
	sessions *scs.SessionManager
	key      string
}

func NewSessionStore(sessions *scs.SessionManager, key string) *SessionStore {
	if key == "" {
		key = DefaultKey
	}

	return &SessionStore{
		sessions: sessions,
		key:      key,
	}
}

// GetPersistedExpiry treats a malformed value the same as a missing one.
func (s *SessionStore) GetPersistedExpiry(ctx context.Context) (time.Time, bool) {
	raw := s.sessions.GetString(ctx, s.key)
	if raw == "" {
		return time.Time{}, false
	}

	expiry, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}

	return expiry, true
}

func (s *SessionStore) SetPersistedExpiry(ctx context.Context, expiry time.Time) error {
	s.sessions.Put(ctx, s.key, expiry.UTC().Format(time.RFC3339Nano))
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	s.sessions.Remove(ctx, s.key)
	return nil
}
