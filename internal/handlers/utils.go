package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"finance-dashboard/internal/authsession"
	"finance-dashboard/internal/middlewares"
)

const maxRequestBodyBytes = 1 << 20

// RedactEmail is used to redact emails (mostly for logs)
func RedactEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return ""
	}

	localRunes := []rune(local)
	if len(localRunes) <= 2 {
		return strings.Repeat("*", len(localRunes)) + "@" + domain
	}

	return string(localRunes[0]) + strings.Repeat("*", len(localRunes)-2) + string(localRunes[len(localRunes)-1]) + "@" + domain
}

func decodeJSON(ctx *middlewares.AppContext, out any) error {
	body := http.MaxBytesReader(ctx.Response, ctx.Request.Body, maxRequestBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func paths(ctx *middlewares.AppContext) authsession.Paths {
	return authsession.Paths{
		SignIn:  ctx.Config.Auth.SignInPath,
		SignOut: ctx.Config.Auth.SignOutPath,
	}
}

// statusFor snapshots the requesting client's state. Requests without a
// controller are reported as signed out.
func statusFor(ctx *middlewares.AppContext) AuthStatusResponse {
	var state authsession.State
	if ctx.Controller != nil {
		state = ctx.Controller.State()
	}

	response := AuthStatusResponse{State: state}
	if target, redirect := authsession.NextNavigation(state, paths(ctx)); redirect {
		response.RedirectTo = target
	}

	return response
}
