package auth

import (
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"finance-dashboard/internal/config"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager builds the cookie session. client is required when the
// configured store is redis.
func NewSessionManager(logger *slog.Logger, cfg *config.Config, client *redis.Client) (*SessionManager, error) {
	gob.Register(&oauth2.Token{})
	sessionManager := scs.New()

	switch cfg.Sessions.Store {
	case "memory":
		sessionManager.Store = memstore.New()
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis session store requires a redis client")
		}
		sessionManager.Store = goredisstore.New(client)
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Sessions.Store)
	}

	logger.Debug("session store configured", "store", cfg.Sessions.Store)

	sessionManager.Lifetime = cfg.Sessions.Lifetime
	sessionManager.IdleTimeout = cfg.Sessions.IdleTimeout

	sessionManager.Cookie.Name = cfg.Sessions.Name
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Sessions.Secure
	sessionManager.Cookie.Path = "/"

	return &SessionManager{SessionManager: sessionManager}, nil
}

func (s *SessionManager) LoadAndSave(next http.Handler) http.Handler {
	return s.SessionManager.LoadAndSave(next)
}

func (s *SessionManager) CookieName() string {
	return s.Cookie.Name
}

func (s *SessionManager) Manager() *scs.SessionManager {
	return s.SessionManager
}

func (s *SessionManager) GetClientID(ctx context.Context) string {
	return s.GetString(ctx, string(SessionKeyClientID))
}

// StartClientSession rotates the session token and binds clientID to it.
// Only signed-in clients get a session, so an anonymous visitor never
// carries the cookie.
func (s *SessionManager) StartClientSession(ctx context.Context, clientID string) error {
	if err := s.RenewToken(ctx); err != nil {
		return fmt.Errorf("failed to renew session token: %w", err)
	}

	s.Put(ctx, string(SessionKeyClientID), clientID)
	s.Put(ctx, string(SessionKeySignedInAt), time.Now().Unix())

	return nil
}

func (s *SessionManager) GetSignedInAt(ctx context.Context) (time.Time, bool) {
	timestamp := s.GetInt64(ctx, string(SessionKeySignedInAt))
	if timestamp == 0 {
		return time.Time{}, false
	}
	return time.Unix(timestamp, 0), true
}

func (s *SessionManager) GetCredential(ctx context.Context) (*oauth2.Token, bool) {
	data := s.Get(ctx, string(SessionKeyCredential))
	if data == nil {
		return nil, false
	}

	if tok, ok := data.(*oauth2.Token); ok {
		return tok, true
	}

	return nil, false
}

func (s *SessionManager) SetCredential(ctx context.Context, tok *oauth2.Token) error {
	if tok == nil {
		return fmt.Errorf("credential is nil")
	}

	s.Put(ctx, string(SessionKeyCredential), tok)
	return nil
}

func (s *SessionManager) ClearCredential(ctx context.Context) error {
	s.Remove(ctx, string(SessionKeyCredential))
	return nil
}

func (s *SessionManager) Logout(ctx context.Context) error {
	return s.Destroy(ctx)
}
