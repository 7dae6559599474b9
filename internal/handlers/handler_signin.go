package handlers

import (
	"errors"
	"net/http"

	"finance-dashboard/internal/authsession"
	"finance-dashboard/internal/middlewares"
	"finance-dashboard/internal/models"

	"github.com/google/uuid"
)

// POSTSignInHandler exchanges email and password for an upstream session.
// A client without a session gets a new client id, which is only bound to
// its cookie once the sign-in succeeded.
func POSTSignInHandler(ctx *middlewares.AppContext) {
	logger := ctx.Logger

	var req SignInRequest
	if err := decodeJSON(ctx, &req); err != nil {
		ctx.SetJSONError(http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return
	}

	if req.Email == "" || req.Password == "" {
		ctx.SetJSONError(http.StatusBadRequest, "email and password are required")
		return
	}

	controller := ctx.Controller
	newClient := controller == nil

	if newClient {
		var err error
		controller, err = ctx.Registry.GetOrCreate(ctx, uuid.NewString())
		if err != nil {
			logger.Error("failed to create session controller", "error", err)
			ctx.SetJSONError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
	}

	err := controller.SignIn(ctx, models.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		if newClient {
			ctx.Registry.Remove(controller.ID())
		}

		message := authsession.MessageSignInUnavailable
		var authErr *authsession.AuthError
		if errors.As(err, &authErr) && authErr.Message != "" {
			message = authErr.Message
		}

		switch {
		case authsession.IsKind(err, authsession.AuthenticationRejected):
			logger.Info("sign-in rejected", "email", RedactEmail(req.Email))
			ctx.SetJSONError(http.StatusUnauthorized, message)
		case authsession.IsKind(err, authsession.SignInTransportError):
			logger.Error("sign-in failed", "email", RedactEmail(req.Email), "error", err)
			ctx.SetJSONError(http.StatusBadGateway, message)
		default:
			logger.Error("failed to store new session", "email", RedactEmail(req.Email), "error", err)
			ctx.SetJSONError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		return
	}

	if newClient {
		if err := ctx.SessionManager.StartClientSession(ctx, controller.ID()); err != nil {
			logger.Error("failed to start client session", "error", err)
			ctx.Registry.Remove(controller.ID())
			ctx.SetJSONError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		ctx.Controller = controller
	}

	logger.Info("user signed in", "email", RedactEmail(req.Email), "client_id", controller.ID())
	ctx.WriteJSON(http.StatusOK, statusFor(ctx))
}
