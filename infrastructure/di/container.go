// Package di wires application dependencies with google/wire. Edit the
// provider set in wire.go and regenerate with `wire ./infrastructure/di`.
package di

import (
	"go.uber.org/zap"

	"hackmate-backend/application/ports"
	"hackmate-backend/application/services"
	"hackmate-backend/application/subscriptions"
	"hackmate-backend/infrastructure/config"
	"hackmate-backend/pkg/auth"
	"hackmate-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config              *config.Config
	Logger              *zap.Logger
	UserRepo            ports.UserRepository
	MessageRepo         ports.MessageRepository
	ConnectionRepo      ports.ConnectionRepository
	PhotoStore          ports.PhotoStore
	EventBus            ports.EventBus
	Cache               ports.Cache
	Metrics             *observability.Metrics
	Registry            *subscriptions.Registry
	JWTValidator        *auth.JWTValidator
	ChatService         *services.ChatService
	ConversationService *services.ConversationService
	ConnectionService   *services.ConnectionService
	ProfileService      *services.ProfileService
}

// Shutdown releases container-held resources
func (c *Container) Shutdown() {
	c.Registry.Close()
	if cache, ok := c.Cache.(*InMemoryCache); ok {
		cache.Close()
	}
	_ = c.Logger.Sync()
}
