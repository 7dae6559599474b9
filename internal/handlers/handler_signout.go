package handlers

import (
	"net/http"

	"finance-dashboard/internal/middlewares"
)

// POSTSignOutHandler signs the client out. Local state is always torn down,
// so the response is OK even when the finance API could not be reached.
func POSTSignOutHandler(ctx *middlewares.AppContext) {
	signOut(ctx)
	ctx.SetJSONStatus(http.StatusOK, "OK")
}

// GETSignOutPageHandler is the sign-out page. Forced navigations after a
// failed background refresh land here.
func GETSignOutPageHandler(ctx *middlewares.AppContext) {
	signOut(ctx)
	ctx.Redirect(ctx.Config.Auth.SignInPath, http.StatusFound)
}

func signOut(ctx *middlewares.AppContext) {
	logger := ctx.Logger

	if controller := ctx.Controller; controller != nil {
		if err := controller.SignOut(ctx); err != nil {
			logger.Warn("remote sign-out failed, local session cleared anyway", "client_id", controller.ID(), "error", err)
		}
		ctx.Registry.Remove(controller.ID())
		ctx.Controller = nil

		logger.Info("user signed out", "client_id", controller.ID())
	}

	if err := ctx.SessionManager.Logout(ctx); err != nil {
		logger.Error("failed to destroy session", "error", err)
	}
}
