package authsession

import (
	"context"

	"finance-dashboard/internal/models"

	"golang.org/x/oauth2"
)

//go:generate mockgen -source=service.go -destination=../mocks/authsession.go -package=mocks

// AuthService is the remote finance API as seen by the controller.
type AuthService interface {
	SignIn(ctx context.Context, creds models.Credentials) (*oauth2.Token, error)
	Verify(ctx context.Context, tok *oauth2.Token) (bool, error)
	Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error)
	FetchUserDetail(ctx context.Context, tok *oauth2.Token) (*models.UserDetail, error)
	FetchUserGroups(ctx context.Context, tok *oauth2.Token) ([]models.Group, error)
	SignOut(ctx context.Context, tok *oauth2.Token) error
}

// CredentialStore persists the upstream credential in the client's session.
type CredentialStore interface {
	GetCredential(ctx context.Context) (*oauth2.Token, bool)
	SetCredential(ctx context.Context, tok *oauth2.Token) error
	ClearCredential(ctx context.Context) error
}
