package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/javi/team-balancer-web/internal/api/handlers"
	"github.com/javi/team-balancer-web/internal/api/middleware"
	"github.com/javi/team-balancer-web/internal/service"
	"github.com/javi/team-balancer-web/internal/websocket"
)

func NewRouter(services *service.Services, hub *websocket.Hub) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	playerHandler := handlers.NewPlayerHandler(services.Player)
	generationHandler := handlers.NewGenerationHandler(services.Balancer)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			// Player registry routes
			r.Route("/players", func(r chi.Router) {
				r.Get("/", playerHandler.List)
				r.Post("/", playerHandler.Create)
				r.Get("/{id}", playerHandler.Get)
				r.Put("/{id}", playerHandler.Update)
				r.Delete("/{id}", playerHandler.Delete)
				r.Post("/import", playerHandler.ImportCSV)
				r.Get("/export", playerHandler.ExportCSV)
			})

			// Generation routes
			r.Route("/generations", func(r chi.Router) {
				r.Post("/", generationHandler.Generate)
				r.Post("/analyze", generationHandler.Analyze)
				r.Get("/", generationHandler.List)
				r.Get("/{id}", generationHandler.Get)
				r.Delete("/{id}", generationHandler.Delete)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
