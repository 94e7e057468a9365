package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lejendary/oauth2-server/app"
	"github.com/lejendary/oauth2-server/handlers"
	"github.com/lejendary/oauth2-server/internal/security"
	"github.com/lejendary/oauth2-server/middleware"
	"github.com/lejendary/oauth2-server/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()
	cfg := deps.Config

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.Server.RequestTimeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Security.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	if cfg.Observability.MetricsEnabled {
		r.Method(http.MethodGet, cfg.Observability.MetricsPath, promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/token", handlers.AuthTokenHandler(deps))
		r.Post("/logout", handlers.AuthLogoutHandler(deps))
	})

	auth := deps.AuthMiddleware

	r.Route("/api/v1", func(r chi.Router) {
		// Every API request carries an authentication record, anonymous or not
		r.Use(auth.Authenticate)

		r.Get("/authenticate", deps.AccountHandler.HandleAuthenticate)

		r.Route("/account", func(r chi.Router) {
			r.Use(auth.RequireAuthenticated)
			r.Get("/", deps.AccountHandler.HandleAccount)
			r.Get("/authorities/{authority}", deps.AccountHandler.HandleAuthorityCheck)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(auth.RequireAuthenticated)
			r.Use(auth.RequireAuthority(security.AdminAuthority))
			r.Get("/", deps.UserHandler.HandleList)
			r.Post("/", deps.UserHandler.HandleCreate)
			r.Get("/{login}", deps.UserHandler.HandleGet)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusMethodNotAllowed, utils.ErrorResponse{
			Error:   "method_not_allowed",
			Message: r.Method + " not allowed on " + r.URL.Path,
		})
	})

	return r
}
