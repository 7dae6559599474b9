package server

import (
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"finance-dashboard/internal/handlers"
	"finance-dashboard/internal/middlewares"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupRouter(ctx *middlewares.AppContext, financeAPI *url.URL) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middlewares.ClientIPMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.MetricsMiddleware)
	r.Use(middleware.Timeout(ctx.Config.Server.Timeout))

	r.Use(ctx.SessionManager.LoadAndSave)

	r.Use(middlewares.AppContextMiddleware(ctx))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ctx.Config.CORS.AllowedOrigins,
		AllowedMethods:   ctx.Config.CORS.AllowedMethods,
		AllowedHeaders:   ctx.Config.CORS.AllowedHeaders,
		ExposedHeaders:   ctx.Config.CORS.ExposedHeaders,
		AllowCredentials: ctx.Config.CORS.AllowCredentials,
		MaxAge:           ctx.Config.CORS.MaxAgeSeconds,
	}))

	r.Use(middleware.Compress(5))
	r.Use(middlewares.ClientController)

	staticDir := ctx.Config.Server.StaticDir

	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(filepath.Join(staticDir, "assets")))))
	r.Handle("/favicon.ico", http.FileServer(http.Dir(staticDir)))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signin", ctx.HandlerFunc(handlers.POSTSignInHandler))
			r.Post("/verify", ctx.HandlerFunc(handlers.POSTVerifyHandler))
			r.Get("/status", ctx.HandlerFunc(handlers.GETAuthStatusHandler))
			r.Post("/signout", ctx.HandlerFunc(handlers.POSTSignOutHandler))
		})

		r.Route("/finance", func(r chi.Router) {
			r.Use(middlewares.RequireActiveSession)
			r.Handle("/*", ctx.HandlerFunc(handlers.NewFinanceProxy(financeAPI, ctx.Logger)))
		})

		r.Route("/v1", func(r chi.Router) {
			r.Get("/health", ctx.HandlerFunc(handlers.HandlerHealth))
		})
	})

	// Page navigations. Forced navigation runs first so a client whose
	// refresh failed is sent to sign-out from any page.
	r.Group(func(r chi.Router) {
		r.Use(middlewares.ForcedNavigation)
		r.Use(middlewares.RouteGuard)

		r.Get(ctx.Config.Auth.SignOutPath, ctx.HandlerFunc(handlers.GETSignOutPageHandler))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				http.NotFound(w, r)
				return
			}
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
		})
	})

	return r
}

func setupDebugRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Mount("/debug", middleware.Profiler())

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
