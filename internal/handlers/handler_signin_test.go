package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"finance-dashboard/internal/testutil"
	"finance-dashboard/internal/upstream"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const signInBody = `{"email":"alex@example.com","password":"correct horse battery staple"}`

func TestPOSTSignInHandler_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "email=alex"},
		{name: "unknown field", body: `{"email":"a@b.c","password":"x","remember":true}`},
		{name: "missing password", body: `{"email":"alex@example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContextWithURL(t, http.MethodPost, "/api/auth/signin").WithJSONBody(tt.body)
			defer tc.Finish()

			tc.CallHandler(POSTSignInHandler)

			tc.AssertStatus(t, http.StatusBadRequest)
			assert.Equal(t, 0, tc.Registry.Len())
		})
	}
}

func TestPOSTSignInHandler_Success(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, http.MethodPost, "/api/auth/signin").WithJSONBody(signInBody)
	defer tc.Finish()

	tok := testutil.TestToken(time.Hour)
	tc.MockAuth.EXPECT().SignIn(gomock.Any(), testutil.TestCredentials()).Return(tok, nil)
	tc.MockAuth.EXPECT().FetchUserDetail(gomock.Any(), tok).Return(nil, nil).AnyTimes()
	tc.MockAuth.EXPECT().FetchUserGroups(gomock.Any(), tok).Return(nil, nil).AnyTimes()
	tc.MockSession.EXPECT().StartClientSession(gomock.Any(), gomock.Any()).Return(nil)

	tc.CallHandler(POSTSignInHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertJSONBool(t, "authenticated", true)
	assert.Equal(t, 1, tc.Registry.Len())

	stored, ok := tc.Credentials.GetCredential(tc.AppContext)
	assert.True(t, ok)
	assert.Equal(t, tok.AccessToken, stored.AccessToken)

	expiry, ok := tc.Tokens.GetPersistedExpiry(tc.AppContext)
	assert.True(t, ok)
	assert.True(t, expiry.Equal(tok.Expiry))

	tc.AppContext.Controller.WaitForLoads()
}

func TestPOSTSignInHandler_Rejected(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, http.MethodPost, "/api/auth/signin").WithJSONBody(signInBody)
	defer tc.Finish()

	tc.MockAuth.EXPECT().SignIn(gomock.Any(), gomock.Any()).Return(nil, upstream.ErrRejected)

	tc.CallHandler(POSTSignInHandler)

	tc.AssertStatus(t, http.StatusUnauthorized)
	tc.AssertJSONString(t, "error", "Invalid email or password.")
	assert.Equal(t, 0, tc.Registry.Len(), "rejected client is not kept")
	tc.AssertLogContains(t, slog.LevelInfo, "sign-in rejected")
}

func TestPOSTSignInHandler_UpstreamDown(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, http.MethodPost, "/api/auth/signin").WithJSONBody(signInBody)
	defer tc.Finish()

	tc.MockAuth.EXPECT().SignIn(gomock.Any(), gomock.Any()).Return(nil, errors.New("dial tcp: connection refused"))

	tc.CallHandler(POSTSignInHandler)

	tc.AssertStatus(t, http.StatusBadGateway)
	response := tc.GetJSONResponse(t)
	assert.NotEmpty(t, response["error"])
	assert.Equal(t, 0, tc.Registry.Len())
}

func TestPOSTSignInHandler_SessionFailure(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, http.MethodPost, "/api/auth/signin").WithJSONBody(signInBody)
	defer tc.Finish()

	tok := testutil.TestToken(time.Hour)
	tc.MockAuth.EXPECT().SignIn(gomock.Any(), gomock.Any()).Return(tok, nil)
	tc.MockAuth.EXPECT().FetchUserDetail(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	tc.MockAuth.EXPECT().FetchUserGroups(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	tc.MockSession.EXPECT().StartClientSession(gomock.Any(), gomock.Any()).Return(errors.New("store down"))

	tc.CallHandler(POSTSignInHandler)

	tc.AssertStatus(t, http.StatusInternalServerError)
	assert.Equal(t, 0, tc.Registry.Len())
}

func TestPOSTSignInHandler_ExistingClient(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, http.MethodPost, "/api/auth/signin").WithJSONBody(signInBody)
	defer tc.Finish()

	controller := tc.WithClient(t, "client-1")
	controller.Gate().Invalidate()

	tok := testutil.TestToken(time.Hour)
	tc.MockAuth.EXPECT().SignIn(gomock.Any(), gomock.Any()).Return(tok, nil)
	tc.MockAuth.EXPECT().FetchUserDetail(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	tc.MockAuth.EXPECT().FetchUserGroups(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	tc.CallHandler(POSTSignInHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertJSONString(t, "client_id", "client-1")
	assert.True(t, controller.Gate().IsActive(), "sign-in resets the gate")
	tc.AssertLogAttr(t, slog.LevelInfo, "user signed in", "client_id", "client-1")
	controller.WaitForLoads()
}
