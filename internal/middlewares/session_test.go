package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance-dashboard/internal/authsession"
	"finance-dashboard/internal/events"
	"finance-dashboard/internal/middlewares"
	"finance-dashboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const cookieName = "finance_session"

// serve runs req through AppContext, ClientController and the given
// middleware in front of a handler that answers 200.
func serve(tc *testutil.TestContext, mw func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, bool) {
	reached := false
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})

	handler := middlewares.AppContextMiddleware(tc.AppContext)(middlewares.ClientController(mw(final)))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr, reached
}

func withCookie(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "session-token"})
	return req
}

func TestRouteGuard(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		cookie      bool
		wantReached bool
		wantTarget  string
	}{
		{name: "private without cookie", path: "/internal/financial/overview", wantTarget: "/signout"},
		{name: "private root without cookie", path: "/internal", wantTarget: "/signout"},
		{name: "private with cookie", path: "/internal/budgets", cookie: true, wantReached: true},
		{name: "public redirect with cookie", path: "/signin", cookie: true, wantTarget: "/internal/financial/overview"},
		{name: "public redirect without cookie", path: "/signin", wantReached: true},
		{name: "trailing slash", path: "/signup/", cookie: true, wantTarget: "/internal/financial/overview"},
		{name: "no rule", path: "/about", wantReached: true},
		{name: "segment boundary", path: "/internals", wantReached: true},
		{name: "sign-out page stays reachable", path: "/signout", wantReached: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContextWithURL(t, http.MethodGet, tt.path)
			defer tc.Finish()

			tc.MockSession.EXPECT().GetClientID(gomock.Any()).Return("").AnyTimes()
			tc.MockSession.EXPECT().CookieName().Return(cookieName).AnyTimes()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie {
				req = withCookie(req)
			}

			rr, reached := serve(tc, middlewares.RouteGuard, req)

			assert.Equal(t, tt.wantReached, reached)
			if tt.wantTarget != "" {
				assert.Equal(t, http.StatusFound, rr.Code)
				assert.Equal(t, tt.wantTarget, rr.Header().Get("Location"))
			}
		})
	}
}

func TestRouteGuard_EmptyCookieCountsAsAbsent(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, http.MethodGet, "/internal")
	defer tc.Finish()

	tc.MockSession.EXPECT().GetClientID(gomock.Any()).Return("")
	tc.MockSession.EXPECT().CookieName().Return(cookieName)

	req := httptest.NewRequest(http.MethodGet, "/internal", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: ""})

	rr, reached := serve(tc, middlewares.RouteGuard, req)
	assert.False(t, reached)
	assert.Equal(t, "/signout", rr.Header().Get("Location"))
}

func TestClientController(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, http.MethodGet, "/internal")
	defer tc.Finish()

	tc.MockSession.EXPECT().GetClientID(gomock.Any()).Return("client-1").Times(2)

	var seen *authsession.Controller
	capture := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = middlewares.GetAppContext(r).Controller
			next.ServeHTTP(w, r)
		})
	}

	_, reached := serve(tc, capture, httptest.NewRequest(http.MethodGet, "/internal", nil))
	require.True(t, reached)
	require.NotNil(t, seen)
	assert.Equal(t, "client-1", seen.ID())
	assert.Equal(t, 1, tc.Registry.Len())
	assert.Equal(t, 1, tc.Bus.Subscribers(events.NameRefreshFailed, "client-1"))

	first := seen
	_, _ = serve(tc, capture, httptest.NewRequest(http.MethodGet, "/internal", nil))
	assert.Same(t, first, seen)
	assert.Equal(t, 1, tc.Bus.Subscribers(events.NameRefreshFailed, "client-1"))
}

func TestClientController_Anonymous(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, http.MethodGet, "/")
	defer tc.Finish()

	tc.MockSession.EXPECT().GetClientID(gomock.Any()).Return("")

	var seen *authsession.Controller
	capture := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = middlewares.GetAppContext(r).Controller
			next.ServeHTTP(w, r)
		})
	}

	_, reached := serve(tc, capture, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, reached)
	assert.Nil(t, seen)
	assert.Equal(t, 0, tc.Registry.Len())
}

func TestForcedNavigation(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, http.MethodGet, "/internal")
	defer tc.Finish()

	tc.MockSession.EXPECT().GetClientID(gomock.Any()).Return("client-1").AnyTimes()
	controller := tc.WithClient(t, "client-1")

	_, reached := serve(tc, middlewares.ForcedNavigation, httptest.NewRequest(http.MethodGet, "/internal/budgets", nil))
	assert.True(t, reached, "no pending navigation")

	require.NoError(t, tc.Bus.Publish(context.Background(), events.Event{
		Name:     events.NameRefreshFailed,
		ClientID: "client-1",
		At:       time.Now(),
	}))

	rr, reached := serve(tc, middlewares.ForcedNavigation, httptest.NewRequest(http.MethodGet, "/internal/budgets", nil))
	assert.False(t, reached)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/signout", rr.Header().Get("Location"))

	_, pending := controller.PendingNavigation()
	assert.False(t, pending, "navigation is consumed once issued")
}

func TestForcedNavigation_AlreadyAtTarget(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, http.MethodGet, "/signout")
	defer tc.Finish()

	tc.MockSession.EXPECT().GetClientID(gomock.Any()).Return("client-1").AnyTimes()
	controller := tc.WithClient(t, "client-1")
	controller.HandleRefreshFailed(events.Event{Name: events.NameRefreshFailed, ClientID: "client-1"})

	_, reached := serve(tc, middlewares.ForcedNavigation, httptest.NewRequest(http.MethodGet, "/signout/", nil))
	assert.True(t, reached)
}

func TestRequireActiveSession(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		tc := testutil.NewTestContextWithURL(t, http.MethodGet, "/api/finance/accounts")
		defer tc.Finish()

		tc.MockSession.EXPECT().GetClientID(gomock.Any()).Return("")

		rr, reached := serve(tc, middlewares.RequireActiveSession, httptest.NewRequest(http.MethodGet, "/api/finance/accounts", nil))
		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("not authenticated", func(t *testing.T) {
		tc := testutil.NewTestContextWithURL(t, http.MethodGet, "/api/finance/accounts")
		defer tc.Finish()

		tc.MockSession.EXPECT().GetClientID(gomock.Any()).Return("client-1")
		tc.WithClient(t, "client-1")

		rr, reached := serve(tc, middlewares.RequireActiveSession, httptest.NewRequest(http.MethodGet, "/api/finance/accounts", nil))
		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("authenticated", func(t *testing.T) {
		tc := testutil.NewTestContextWithURL(t, http.MethodGet, "/api/finance/accounts")
		defer tc.Finish()

		tc.MockSession.EXPECT().GetClientID(gomock.Any()).Return("client-1")
		controller := tc.WithClient(t, "client-1")
		tc.SignInClient(t, controller, testutil.TestToken(time.Hour))

		rr, reached := serve(tc, middlewares.RequireActiveSession, httptest.NewRequest(http.MethodGet, "/api/finance/accounts", nil))
		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("invalidating", func(t *testing.T) {
		tc := testutil.NewTestContextWithURL(t, http.MethodGet, "/api/finance/accounts")
		defer tc.Finish()

		tc.MockSession.EXPECT().GetClientID(gomock.Any()).Return("client-1")
		controller := tc.WithClient(t, "client-1")
		tc.SignInClient(t, controller, testutil.TestToken(time.Hour))
		controller.Gate().StartInvalidation()

		rr, reached := serve(tc, middlewares.RequireActiveSession, httptest.NewRequest(http.MethodGet, "/api/finance/accounts", nil))
		assert.False(t, reached)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}
