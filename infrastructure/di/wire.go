//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"hackmate-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideS3Client,
	ProvideUserRepository,
	ProvideMessageRepository,
	ProvideConnectionRepository,
	ProvidePhotoStore,
	ProvideEventBus,
	ProvideMetrics,
	ProvideCache,
	ProvideRegistry,
	ProvideJWTValidator,
	ProvideChatService,
	ProvideConversationService,
	ProvideConnectionService,
	ProvideProfileService,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
