package handlers

import (
	"net/http"

	"finance-dashboard/internal/middlewares"
)

// GETAuthStatusHandler reports the session state. It never changes it.
func GETAuthStatusHandler(ctx *middlewares.AppContext) {
	ctx.WriteJSON(http.StatusOK, statusFor(ctx))
}

// POSTVerifyHandler checks the held credential against the finance API.
// A failed check leaves the client signed out without forcing navigation.
func POSTVerifyHandler(ctx *middlewares.AppContext) {
	if ctx.Controller == nil {
		ctx.WriteJSON(http.StatusUnauthorized, statusFor(ctx))
		return
	}

	if !ctx.Controller.Verify(ctx) {
		ctx.WriteJSON(http.StatusUnauthorized, statusFor(ctx))
		return
	}

	ctx.WriteJSON(http.StatusOK, statusFor(ctx))
}
