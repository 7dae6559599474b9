package middlewares

import (
	"net/http"

	"finance-dashboard/internal/routeguard"
)

// ForcedNavigation sends a page navigation to the target recorded by the
// client's controller, such as the sign-out page after a background refresh
// failed. The pending target is consumed once the client is sent there.
func ForcedNavigation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil || appCtx.Controller == nil {
			next.ServeHTTP(w, r)
			return
		}

		target, ok := appCtx.Controller.TakePendingNavigation()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if routeguard.Normalize(r.URL.Path) == routeguard.Normalize(target) {
			next.ServeHTTP(w, r)
			return
		}

		appCtx.Logger.Info("forcing navigation", "client_id", appCtx.Controller.ID(), "from", r.URL.Path, "to", target)
		http.Redirect(w, r, target, http.StatusFound)
	})
}
