package middlewares

import (
	"net/http"
)

// ClientController attaches the requesting client's session controller to
// the AppContext, creating and mounting it on first use. Requests without a
// client id in their session pass through with no controller.
func ClientController(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		clientID := appCtx.SessionManager.GetClientID(r.Context())
		if clientID == "" || appCtx.Registry == nil {
			next.ServeHTTP(w, r)
			return
		}

		controller, err := appCtx.Registry.GetOrCreate(r.Context(), clientID)
		if err != nil {
			appCtx.Logger.Error("failed to load session controller", "client_id", clientID, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		controller.Touch(r.Context())
		appCtx.Controller = controller

		next.ServeHTTP(w, r)
	})
}
