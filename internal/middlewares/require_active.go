package middlewares

import (
	"net/http"
)

// RequireActiveSession only lets requests through for an authenticated
// client whose gate is still active. Once sign-out has started no new
// request is issued on the client's behalf.
func RequireActiveSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		controller := appCtx.Controller
		if controller == nil {
			appCtx.SetJSONError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
			return
		}

		if !controller.Gate().IsActive() {
			appCtx.SetJSONError(http.StatusConflict, "session is being signed out")
			return
		}

		if !controller.State().Authenticated || controller.Credential() == nil {
			appCtx.SetJSONError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
			return
		}

		next.ServeHTTP(w, r)
	})
}
