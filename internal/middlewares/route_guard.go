package middlewares

import (
	"net/http"

	"finance-dashboard/internal/metrics"
	"finance-dashboard/internal/routeguard"
)

// RouteGuard applies the route rules to page navigations. Only the presence
// of the session cookie is considered; whether the session behind it is
// still valid is left to the session controller.
func RouteGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if appCtx.Guard == nil {
			next.ServeHTTP(w, r)
			return
		}

		decision := appCtx.Guard.Decide(r.URL.Path, hasSessionCookie(r, appCtx.SessionManager.CookieName()))

		rule := decision.Rule
		if rule == "" {
			rule = "none"
		}

		if decision.Outcome == routeguard.Redirect {
			metrics.RouteGuardDecisions.WithLabelValues(rule, metrics.GuardDecisionRedirect).Inc()
			appCtx.Logger.Debug("route guard redirect", "path", r.URL.Path, "rule", rule, "target", decision.Target)
			http.Redirect(w, r, decision.Target, http.StatusFound)
			return
		}

		metrics.RouteGuardDecisions.WithLabelValues(rule, metrics.GuardDecisionContinue).Inc()
		next.ServeHTTP(w, r)
	})
}

func hasSessionCookie(r *http.Request, name string) bool {
	cookie, err := r.Cookie(name)
	return err == nil && cookie.Value != ""
}
