package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tmsuite/console-gateway/app"
)

// SetupRoutes configures all gateway routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for the SPA origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.Health.HandleHealth)
	r.Get("/readyz", deps.Health.HandleReadiness)

	// Auth endpoints (unguarded: login creates the session, logout is
	// safe without one)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", deps.Auth.HandleLogin)
		r.Get("/logout", deps.Auth.HandleLogout)
	})

	// API v1 routes (guarded)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.Guard.RequireSession)

		r.Get("/session", deps.Session.HandleCurrentUser)
		r.Post("/session/refresh", deps.Session.HandleRefresh)
		r.Get("/navigation", deps.Session.HandleNavigation)
		r.Get("/capabilities/check", deps.Session.HandleCapabilityCheck)

		// Proxied console resources, each behind its capability code.
		proxied := map[string]string{
			"/inquiries": "inquiry:view",
			"/clients":   "client:view",
			"/plans":     "plan:view",
			"/payments":  "payment:view",
			"/invoices":  "invoice:view",
			"/tickets":   "ticket:view",
			"/renewals":  "renewal:view",
			"/reports":   "report:view",
		}
		proxy := http.HandlerFunc(deps.Proxy.Forward)
		for path, code := range proxied {
			r.Route(path, func(r chi.Router) {
				r.Use(deps.Guard.RequirePermission(code))
				r.Handle("/", proxy)
				r.Handle("/*", proxy)
			})
		}
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
