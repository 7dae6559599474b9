package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"finance-dashboard/internal/config"
	"finance-dashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type financeAPI struct {
	signOuts atomic.Int32
}

func (f *financeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("username") != "alex@example.com" || r.PostForm.Get("password") != "s3cret" {
			writeTestJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_grant"})
			return
		}
		writeTestJSON(w, http.StatusOK, map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	})
	mux.HandleFunc("GET /auth/verify", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /auth/signout", func(w http.ResponseWriter, r *http.Request) {
		f.signOuts.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, models.UserDetail{ID: "u-1", Email: "alex@example.com", DisplayName: "Alex"})
	})
	mux.HandleFunc("GET /users/me/groups", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, []models.Group{{ID: "g-1", Name: "Household", Role: "owner"}})
	})
	mux.HandleFunc("GET /accounts", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, map[string]string{"authorization": r.Header.Get("Authorization")})
	})

	return mux
}

func writeTestJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestServer(t *testing.T) (*Server, *financeAPI) {
	t.Helper()

	api := &financeAPI{}
	upstreamSrv := httptest.NewServer(api.handler(t))
	t.Cleanup(upstreamSrv.Close)

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>finance</html>"), 0o600))

	cfg, err := config.ParseConfig([]byte(fmt.Sprintf(`
server:
  static_dir: %s
sessions:
  secure: false
upstream:
  base_url: %s
  client_id: finance-dashboard
`, staticDir, upstreamSrv.URL)))
	require.NoError(t, err)

	s, err := newServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})

	return s, api
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func (c *client) do(method, target, body string) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)

	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == "finance_session" && cookie.MaxAge >= 0 && cookie.Value != "" {
			c.cookie = cookie
		}
	}

	return rr
}

func TestServer_SessionFlow(t *testing.T) {
	s, api := newTestServer(t)
	c := &client{t: t, handler: s.Handler()}

	rr := c.do(http.MethodGet, "/internal/financial/overview", "")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/signout", rr.Header().Get("Location"))

	rr = c.do(http.MethodGet, "/signin", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, c.cookie, "anonymous visitors get no session cookie")

	rr = c.do(http.MethodPost, "/api/auth/signin", `{"email":"alex@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid email or password.")
	assert.Nil(t, c.cookie)
	assert.Equal(t, 0, s.registry.Len())

	rr = c.do(http.MethodPost, "/api/auth/signin", `{"email":"alex@example.com","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NotNil(t, c.cookie)
	assert.Equal(t, 1, s.registry.Len())

	rr = c.do(http.MethodGet, "/signin", "")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/internal/financial/overview", rr.Header().Get("Location"))

	rr = c.do(http.MethodGet, "/internal/financial/overview", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "finance")

	rr = c.do(http.MethodGet, "/api/finance/accounts", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Bearer access-1")

	rr = c.do(http.MethodGet, "/api/auth/status", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"authenticated":true`)

	rr = c.do(http.MethodPost, "/api/auth/signout", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"OK"`)
	assert.Equal(t, int32(1), api.signOuts.Load())
	assert.Equal(t, 0, s.registry.Len())

	rr = c.do(http.MethodGet, "/api/finance/accounts", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestServer_HealthAndUnknownAPI(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, handler: s.Handler()}

	rr := c.do(http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"OK"`)

	rr = c.do(http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNewServer_InvalidRoutes(t *testing.T) {
	cfg, err := config.ParseConfig([]byte(`
upstream:
  base_url: https://api.finance.example.com
  client_id: finance-dashboard
`))
	require.NoError(t, err)

	cfg.Auth.SignOutPath = "/internal/signout"

	_, err = newServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf strings.Builder
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("dropped")
	logger.Warn("kept", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"service":"finance-dashboard"`)
}

func TestDebugRouter_Metrics(t *testing.T) {
	rr := httptest.NewRecorder()
	setupDebugRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "finance_dashboard_session_controllers")
}
