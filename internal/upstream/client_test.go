package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"finance-dashboard/internal/config"
	"finance-dashboard/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeAPI struct {
	t            *testing.T
	accessToken  string
	refreshToken string
	expiresIn    int
	verifyStatus int
	signOutCalls int
	signOutCode  int
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(f.t, r.ParseForm())

		switch r.PostForm.Get("grant_type") {
		case "password":
			if r.PostForm.Get("username") != "jane@example.com" || r.PostForm.Get("password") != "hunter2" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
				return
			}
		case "refresh_token":
			if r.PostForm.Get("refresh_token") != f.refreshToken {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
				return
			}
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
			return
		}

		body := map[string]any{
			"access_token": f.accessToken,
			"token_type":   "Bearer",
		}
		if f.expiresIn > 0 {
			body["expires_in"] = f.expiresIn
		}
		writeJSON(w, http.StatusOK, body)
	})

	mux.HandleFunc("/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(f.verifyStatus)
	})

	mux.HandleFunc("/auth/signout", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, http.MethodPost, r.Method)
		f.signOutCalls++
		w.WriteHeader(f.signOutCode)
	})

	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.UserDetail{ID: "u-1", Email: "jane@example.com", DisplayName: "Jane"})
	})

	mux.HandleFunc("/users/me/groups", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Group{{ID: "g-1", Name: "Household", Role: "owner"}})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()

	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	client, err := NewClient(config.UpstreamConfig{
		BaseURL:              srv.URL + "/",
		ClientID:             "finance-dashboard",
		TokenPath:            "/auth/token",
		Timeout:              5 * time.Second,
		DefaultTokenLifetime: 15 * time.Minute,
	}, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	require.NoError(t, err)

	return client
}

func TestClient_SignIn(t *testing.T) {
	api := &fakeAPI{t: t, accessToken: "access-1", refreshToken: "refresh-1", expiresIn: 3600, verifyStatus: http.StatusOK}
	client := newTestClient(t, api)

	t.Run("accepted credentials", func(t *testing.T) {
		before := time.Now()
		tok, err := client.SignIn(context.Background(), models.Credentials{Email: "jane@example.com", Password: "hunter2"})
		require.NoError(t, err)

		assert.Equal(t, "access-1", tok.AccessToken)
		assert.WithinDuration(t, before.Add(time.Hour), tok.Expiry, 5*time.Second)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		_, err := client.SignIn(context.Background(), models.Credentials{Email: "jane@example.com", Password: "wrong"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRejected)
	})
}

func TestClient_SignInTransportError(t *testing.T) {
	client, err := NewClient(config.UpstreamConfig{
		BaseURL:   "http://127.0.0.1:1",
		TokenPath: "/auth/token",
		Timeout:   time.Second,
	}, slog.Default())
	require.NoError(t, err)

	_, err = client.SignIn(context.Background(), models.Credentials{Email: "a", Password: "b"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRejected))
}

func TestClient_Refresh(t *testing.T) {
	api := &fakeAPI{t: t, accessToken: "access-2", refreshToken: "refresh-1", expiresIn: 60, verifyStatus: http.StatusOK}
	client := newTestClient(t, api)

	refreshed, err := client.Refresh(context.Background(), &oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1"})
	require.NoError(t, err)
	assert.Equal(t, "access-2", refreshed.AccessToken)
	assert.Equal(t, "refresh-1", refreshed.RefreshToken)

	_, err = client.Refresh(context.Background(), &oauth2.Token{AccessToken: "access-1", RefreshToken: "revoked"})
	assert.ErrorIs(t, err, ErrRejected)

	_, err = client.Refresh(context.Background(), &oauth2.Token{AccessToken: "access-1"})
	assert.ErrorIs(t, err, ErrRejected)
}

func TestClient_Verify(t *testing.T) {
	api := &fakeAPI{t: t, accessToken: "access-1", verifyStatus: http.StatusOK}
	client := newTestClient(t, api)
	ctx := context.Background()

	ok, err := client.Verify(ctx, &oauth2.Token{AccessToken: "access-1", TokenType: "Bearer"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.Verify(ctx, &oauth2.Token{AccessToken: "stale", TokenType: "Bearer"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = client.Verify(ctx, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	api.verifyStatus = http.StatusBadGateway
	_, err = client.Verify(ctx, &oauth2.Token{AccessToken: "access-1", TokenType: "Bearer"})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestClient_SignOut(t *testing.T) {
	api := &fakeAPI{t: t, accessToken: "access-1", signOutCode: http.StatusNoContent}
	client := newTestClient(t, api)
	tok := &oauth2.Token{AccessToken: "access-1", TokenType: "Bearer"}

	require.NoError(t, client.SignOut(context.Background(), tok))
	assert.Equal(t, 1, api.signOutCalls)

	api.signOutCode = http.StatusUnauthorized
	require.NoError(t, client.SignOut(context.Background(), tok))

	api.signOutCode = http.StatusInternalServerError
	assert.Error(t, client.SignOut(context.Background(), tok))

	assert.ErrorIs(t, client.SignOut(context.Background(), nil), ErrNoCredential)
}

func TestClient_FetchProfile(t *testing.T) {
	api := &fakeAPI{t: t, accessToken: "access-1"}
	client := newTestClient(t, api)
	tok := &oauth2.Token{AccessToken: "access-1", TokenType: "Bearer"}

	user, err := client.FetchUserDetail(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)

	groups, err := client.FetchUserGroups(context.Background(), tok)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Household", groups[0].Name)
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(42 * time.Minute)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    *oauth2.Token
		expected time.Time
	}{
		{
			name:     "expires_in from token response",
			token:    &oauth2.Token{AccessToken: signed, Expiry: now.Add(time.Hour)},
			expected: now.Add(time.Hour),
		},
		{
			name:     "exp claim of jwt access token",
			token:    &oauth2.Token{AccessToken: signed},
			expected: exp,
		},
		{
			name:     "opaque token falls back to default lifetime",
			token:    &oauth2.Token{AccessToken: "opaque"},
			expected: now.Add(15 * time.Minute),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenExpiry(tt.token, now, 15*time.Minute)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}
