package testutil

import (
	"time"

	"finance-dashboard/internal/models"

	"golang.org/x/oauth2"
)

func TestCredentials() models.Credentials {
	return models.Credentials{Email: "alex@example.com", Password: "correct horse battery staple"}
}

// TestToken returns an upstream credential that expires after ttl.
func TestToken(ttl time.Duration) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(ttl),
	}
}
