package testutil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"finance-dashboard/internal/authsession"
	"finance-dashboard/internal/config"
	"finance-dashboard/internal/events"
	"finance-dashboard/internal/middlewares"
	"finance-dashboard/internal/mocks"
	"finance-dashboard/internal/routeguard"
	"finance-dashboard/internal/tokenstore"

	"go.uber.org/mock/gomock"
	"golang.org/x/oauth2"
)

// TestContext holds everything needed for testing
type TestContext struct {
	AppContext     *middlewares.AppContext
	Request        *http.Request
	Response       *httptest.ResponseRecorder
	MockController *gomock.Controller
	MockSession    *mocks.MockSessionProvider
	MockAuth       *mocks.MockAuthService
	Tokens         *tokenstore.MemStore
	Credentials    *MemCredentials
	Bus            *events.MemBus
	Registry       *authsession.Registry
	LogHandler     *TestLogHandler
}

// NewTestConfig returns a config with every section at its defaults.
func NewTestConfig() *config.Config {
	return &config.Config{
		Server:   config.DefaultServerConfig,
		Log:      config.DefaultLogConfig,
		Sessions: config.DefaultSessionConfig,
		Upstream: config.DefaultUpstreamConfig,
		Auth:     config.DefaultAuthConfig,
		Routes:   routeguard.DefaultRules(),
		Events:   config.DefaultEventsConfig,
	}
}

// NewTestContextWithURL creates a complete test setup with sensible defaults
func NewTestContextWithURL(t *testing.T, method, url string) *TestContext {
	t.Helper()

	cfg := NewTestConfig()

	logHandler := NewTestLogHandler()
	logger := slog.New(logHandler)

	ctrl := gomock.NewController(t)
	mockSession := mocks.NewMockSessionProvider(ctrl)
	mockAuth := mocks.NewMockAuthService(ctrl)

	tokens := tokenstore.NewMemStore()
	creds := NewMemCredentials()
	bus := events.NewMemBus()
	t.Cleanup(func() { _ = bus.Close() })

	registry := authsession.NewRegistry(authsession.Options{
		Auth:        mockAuth,
		Tokens:      tokens,
		Credentials: creds,
		Bus:         bus,
		Paths:       authsession.Paths{SignIn: cfg.Auth.SignInPath, SignOut: cfg.Auth.SignOutPath},
		Logger:      logger,
	})
	t.Cleanup(registry.Close)

	guard, err := routeguard.New(cfg.Routes, cfg.Auth.SignOutPath)
	if err != nil {
		t.Fatalf("failed to build route guard: %v", err)
	}

	req := httptest.NewRequest(method, url, nil)
	rr := httptest.NewRecorder()

	appCtx := &middlewares.AppContext{
		Context:        req.Context(),
		Config:         cfg,
		Logger:         logger,
		SessionManager: mockSession,
		Registry:       registry,
		Guard:          guard,
		Request:        req,
		Response:       rr,
	}

	return &TestContext{
		AppContext:     appCtx,
		Request:        req,
		Response:       rr,
		MockController: ctrl,
		MockSession:    mockSession,
		MockAuth:       mockAuth,
		Tokens:         tokens,
		Credentials:    creds,
		Bus:            bus,
		Registry:       registry,
		LogHandler:     logHandler,
	}
}

// Finish should be called at the end of tests to clean up mocks
func (tc *TestContext) Finish() {
	if tc.MockController != nil {
		tc.MockController.Finish()
	}
}

// CallHandler executes a handler with the test context
func (tc *TestContext) CallHandler(handler middlewares.AppHandler) {
	handler(tc.AppContext)
}

// WithJSONBody replaces the request body with a JSON payload.
func (tc *TestContext) WithJSONBody(body string) *TestContext {
	req := httptest.NewRequest(tc.Request.Method, tc.Request.URL.String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return tc.WithRequest(req)
}

// WithRequest allows you to set a custom request (useful for tests that don't use URL constructor)
func (tc *TestContext) WithRequest(req *http.Request) *TestContext {
	tc.Request = req
	tc.AppContext.Request = req
	tc.AppContext.Context = req.Context()
	return tc
}

// WithConfig allows you to override the default config for specific tests
func (tc *TestContext) WithConfig(cfg *config.Config) *TestContext {
	tc.AppContext.Config = cfg
	return tc
}

// Helper to add headers
func (tc *TestContext) WithHeader(key, value string) *TestContext {
	tc.Request.Header.Set(key, value)
	return tc
}

// WithClient registers a controller for clientID and attaches it to the
// AppContext, the way ClientController does for a request with a session.
func (tc *TestContext) WithClient(t *testing.T, clientID string) *authsession.Controller {
	t.Helper()

	controller, err := tc.Registry.GetOrCreate(context.Background(), clientID)
	if err != nil {
		t.Fatalf("failed to create controller: %v", err)
	}

	tc.AppContext.Controller = controller
	return controller
}

// SignInClient drives controller through a successful sign-in with tok and
// waits for the profile loads to settle.
func (tc *TestContext) SignInClient(t *testing.T, controller *authsession.Controller, tok *oauth2.Token) {
	t.Helper()

	tc.MockAuth.EXPECT().SignIn(gomock.Any(), gomock.Any()).Return(tok, nil)
	tc.MockAuth.EXPECT().FetchUserDetail(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	tc.MockAuth.EXPECT().FetchUserGroups(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	if err := controller.SignIn(context.Background(), TestCredentials()); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	controller.WaitForLoads()
}

func (tc *TestContext) AssertLogContains(t *testing.T, level slog.Level, message string) {
	if !tc.LogHandler.ContainsMessage(level, message) {
		t.Errorf("Expected to find log entry with level %v containing message: %s", level, message)
	}
}

// AssertLogAttr checks that the record at level with message carries key=value.
func (tc *TestContext) AssertLogAttr(t *testing.T, level slog.Level, message, key string, value any) {
	record, ok := tc.LogHandler.Find(level, message)
	if !ok {
		t.Errorf("Expected to find log entry with level %v containing message: %s", level, message)
		return
	}
	if got := record.Attrs[key]; got != value {
		t.Errorf("Expected log attribute %s=%v, got %v", key, value, got)
	}
}

// AssertStatus checks the HTTP status code
func (tc *TestContext) AssertStatus(t *testing.T, expectedStatus int) {
	if tc.Response.Code != expectedStatus {
		t.Errorf("Expected status %d, got %d", expectedStatus, tc.Response.Code)
	}
}

// AssertContentType checks the content type header
func (tc *TestContext) AssertContentType(t *testing.T, expectedType string) {
	if ct := tc.Response.Header().Get("Content-Type"); ct != expectedType {
		t.Errorf("Expected content type %s, got %s", expectedType, ct)
	}
}

// AssertRedirect checks for a 302 to location.
func (tc *TestContext) AssertRedirect(t *testing.T, location string) {
	tc.AssertStatus(t, http.StatusFound)
	if got := tc.Response.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %s, got %s", location, got)
	}
}

// GetJSONResponse parses the response body as JSON
func (tc *TestContext) GetJSONResponse(t *testing.T) map[string]interface{} {
	var response map[string]interface{}
	if err := json.Unmarshal(tc.Response.Body.Bytes(), &response); err != nil {
		t.Fatalf("Could not parse JSON response: %v", err)
	}
	return response
}

func (tc *TestContext) AssertJSONBool(t *testing.T, field string, expected bool) {
	response := tc.GetJSONResponse(t)
	actual, exists := response[field]

	if !exists {
		t.Errorf("Field %s not found in response", field)
		return
	}

	actualBool, ok := actual.(bool)
	if !ok {
		t.Errorf("Expected %s to be a boolean, got %T", field, actual)
		return
	}

	if actualBool != expected {
		t.Errorf("Expected %s to be %v, got %v", field, expected, actualBool)
	}
}

// AssertJSONString checks a specific string field in a JSON response
func (tc *TestContext) AssertJSONString(t *testing.T, field string, expected string) {
	response := tc.GetJSONResponse(t)
	actual, exists := response[field]

	if !exists {
		t.Errorf("Field %s not found in response", field)
		return
	}

	actualString, ok := actual.(string)
	if !ok {
		t.Errorf("Expected %s to be a string, got %T", field, actual)
		return
	}

	if actualString != expected {
		t.Errorf("Expected %s to be %q, got %q", field, expected, actualString)
	}
}

// MemCredentials is an in-memory credential store for a single client.
type MemCredentials struct {
	mu  sync.Mutex
	tok *oauth2.Token
}

func NewMemCredentials() *MemCredentials {
	return &MemCredentials{}
}

func (m *MemCredentials) GetCredential(_ context.Context) (*oauth2.Token, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tok, m.tok != nil
}

func (m *MemCredentials) SetCredential(_ context.Context, tok *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = tok
	return nil
}

func (m *MemCredentials) ClearCredential(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = nil
	return nil
}
