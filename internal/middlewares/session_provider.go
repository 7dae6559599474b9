package middlewares

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

//go:generate mockgen -source=session_provider.go -destination=../mocks/session.go -package=mocks

// SessionProvider is the server-side session of a client. It also serves as
// the controller's credential store, so its methods take the request
// context that carries the loaded session.
type SessionProvider interface {
	GetClientID(ctx context.Context) string
	StartClientSession(ctx context.Context, clientID string) error
	GetSignedInAt(ctx context.Context) (time.Time, bool)

	GetCredential(ctx context.Context) (*oauth2.Token, bool)
	SetCredential(ctx context.Context, tok *oauth2.Token) error
	ClearCredential(ctx context.Context) error

	Logout(ctx context.Context) error
	CookieName() string

	LoadAndSave(next http.Handler) http.Handler
}
