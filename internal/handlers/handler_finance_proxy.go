package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"finance-dashboard/internal/middlewares"

	"golang.org/x/oauth2"
)

// FinancePrefix is stripped before requests are forwarded.
const FinancePrefix = "/api/finance"

type credentialKey struct{}

// NewFinanceProxy forwards finance API calls to target with the client's
// upstream credential in place of its cookies. It must sit behind
// RequireActiveSession.
func NewFinanceProxy(target *url.URL, logger *slog.Logger) middlewares.AppHandler {
	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, FinancePrefix)
			pr.Out.URL.RawPath = ""
			pr.SetURL(target)
			pr.SetXForwarded()

			pr.Out.Header.Del("Cookie")
			pr.Out.Header.Del("Authorization")

			if tok, ok := pr.In.Context().Value(credentialKey{}).(*oauth2.Token); ok {
				tok.SetAuthHeader(pr.Out)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("finance api request failed", "path", r.URL.Path, "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"Bad Gateway"}` + "\n"))
		},
	}

	return func(ctx *middlewares.AppContext) {
		if ctx.Controller == nil || ctx.Controller.Credential() == nil {
			ctx.SetJSONError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
			return
		}

		req := ctx.Request.WithContext(context.WithValue(ctx.Request.Context(), credentialKey{}, ctx.Controller.Credential()))
		proxy.ServeHTTP(ctx.Response, req)
	}
}
