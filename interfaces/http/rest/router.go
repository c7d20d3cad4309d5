// Package rest wires the HTTP surface: routing, middleware, and handlers
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"hackmate-backend/infrastructure/di"
	"hackmate-backend/interfaces/http/rest/handlers"
	"hackmate-backend/interfaces/http/rest/middleware"
	"hackmate-backend/interfaces/websocket"
	"hackmate-backend/pkg/common"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		logger:    container.Logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	cfg := rt.container.Config

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.hackmate.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	authenticator := middleware.NewAuthenticator(
		rt.container.JWTValidator,
		cfg.IPRateLimit,
		cfg.UserRateLimit,
		rt.logger,
	)

	authHandler := handlers.NewAuthHandler(rt.container.ProfileService, cfg.IsProduction(), rt.logger)
	userHandler := handlers.NewUserHandler(rt.container.ProfileService, rt.logger)
	chatHandler := handlers.NewChatHandler(rt.container.ChatService, rt.container.ConversationService, rt.logger)
	connectionHandler := handlers.NewConnectionHandler(rt.container.ConnectionService, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authenticator.Handler)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/session", authHandler.CreateSession)
			r.Delete("/session", authHandler.DeleteSession)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Get("/me", userHandler.GetMe)
			r.Put("/me", userHandler.UpdateMe)
			r.Post("/me/photo", userHandler.UploadPhoto)
			r.Get("/{userID}", userHandler.GetUser)
		})

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", chatHandler.ListConversations)
			r.Get("/{userID}/messages", chatHandler.GetMessages)
			r.Post("/{userID}/messages", chatHandler.SendMessage)
		})

		r.Route("/connections", func(r chi.Router) {
			r.Post("/", connectionHandler.Create)
			r.Get("/", connectionHandler.List)
			r.Get("/active", connectionHandler.CheckActive)
			r.Post("/{connectionID}/respond", connectionHandler.Respond)
		})
	})

	// The upgrade request authenticates via the session cookie.
	wsServer := websocket.NewServer(
		rt.container.ChatService,
		rt.container.ConversationService,
		rt.container.Metrics,
		authenticator,
		nil,
		rt.logger,
	)
	router.Get("/ws", wsServer.HandleWebSocket)

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ready",
		"subscriptions": rt.container.Registry.ActiveCount(),
	})
}
