package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/isdelr/inventory-manager-be/internal/api/handlers"
	"github.com/isdelr/inventory-manager-be/internal/auth"
	"github.com/isdelr/inventory-manager-be/internal/config"
	"github.com/isdelr/inventory-manager-be/internal/httpx"
	"github.com/isdelr/inventory-manager-be/internal/logger"
	"github.com/isdelr/inventory-manager-be/internal/models"
	"github.com/isdelr/inventory-manager-be/internal/services"
	"github.com/isdelr/inventory-manager-be/internal/websocket"
	"github.com/unrolled/secure"
)

// Dependencies bundles everything the router wires into handlers.
type Dependencies struct {
	DB        *sql.DB
	Verifier  *auth.Verifier
	Revoker   auth.Revoker
	Auth      services.AuthServiceProvider
	Users     services.UserServiceProvider
	Products  services.ProductServiceProvider
	Customers services.CustomerServiceProvider
	Events    services.EventServiceProvider
	Hub       *websocket.Hub
	HostStats handlers.HostStatsSource
}

var (
	anyRole   = models.Roles
	staff     = []models.Role{models.RoleAdmin, models.RoleManager}
	adminOnly = []models.Role{models.RoleAdmin}
)

// NewRouter creates and configures a new Chi router.
func NewRouter(cfg *config.Config, deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Use(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		IsDevelopment:      !cfg.IsProduction(),
	}).Handler)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, http.StatusNotFound, "not_found", "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})

	opts := auth.MiddlewareOptions{Revoker: deps.Revoker}
	if cfg.RecheckUser {
		opts.Users = deps.Users
	}
	authenticate := auth.Authenticate(deps.Verifier, opts)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.HostStats)
	authHandler := handlers.NewAuthHandler(deps.Auth)
	userHandler := handlers.NewUserHandler(deps.Users)
	productHandler := handlers.NewProductHandler(deps.Products)
	customerHandler := handlers.NewCustomerHandler(deps.Customers)
	eventHandler := handlers.NewEventHandler(deps.Events)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, cfg.CORSAllowedOrigins)

	r.Get("/", healthHandler.Root)

	r.Route("/api", func(r chi.Router) {
		// The websocket stays outside the request timeout.
		r.With(authenticate, auth.RequireRoles(staff...)).Get("/ws", wsHandler.Serve)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.RequestTimeout))

			r.Get("/health", healthHandler.Health)

			r.Route("/auth", func(r chi.Router) {
				r.With(httprate.LimitByIP(cfg.LoginRateLimit, time.Minute)).Post("/login", authHandler.Login)
				r.Group(func(r chi.Router) {
					r.Use(authenticate)
					r.Get("/me", authHandler.Me)
					r.Post("/logout", authHandler.Logout)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(authenticate)

				r.Route("/products", func(r chi.Router) {
					r.With(auth.RequireRoles(anyRole...)).Get("/", productHandler.GetAll)
					r.With(auth.RequireRoles(staff...)).Post("/", productHandler.Create)
					r.Route("/{id}", func(r chi.Router) {
						r.With(auth.RequireRoles(anyRole...)).Get("/", productHandler.Get)
						r.With(auth.RequireRoles(staff...)).Put("/", productHandler.Update)
						r.With(auth.RequireRoles(staff...)).Delete("/", productHandler.Delete)
					})
				})

				r.Route("/customers", func(r chi.Router) {
					r.With(auth.RequireRoles(anyRole...)).Get("/", customerHandler.GetAll)
					r.With(auth.RequireRoles(staff...)).Post("/", customerHandler.Create)
					r.Route("/{id}", func(r chi.Router) {
						r.With(auth.RequireRoles(anyRole...)).Get("/", customerHandler.Get)
						r.With(auth.RequireRoles(staff...)).Put("/", customerHandler.Update)
						r.With(auth.RequireRoles(adminOnly...)).Delete("/", customerHandler.Delete)
					})
				})

				r.Route("/users", func(r chi.Router) {
					r.Use(auth.RequireRoles(adminOnly...))
					r.Get("/", userHandler.GetAll)
					r.Post("/", userHandler.Create)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", userHandler.Get)
						r.Put("/", userHandler.Update)
						r.Delete("/", userHandler.Delete)
					})
				})

				r.With(auth.RequireRoles(staff...)).Get("/events", eventHandler.GetRecent)
			})
		})
	})

	return r
}
