package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"hackmate-backend/application/ports"
	"hackmate-backend/application/services"
	"hackmate-backend/application/subscriptions"
	"hackmate-backend/infrastructure/config"
	"hackmate-backend/infrastructure/messaging/eventbridge"
	"hackmate-backend/infrastructure/persistence/dynamodb"
	"hackmate-backend/infrastructure/storage/s3"
	"hackmate-backend/pkg/auth"
	"hackmate-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideUserRepository creates a user repository
func ProvideUserRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.UserRepository {
	return dynamodb.NewUserRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideMessageRepository creates a message repository
func ProvideMessageRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.MessageRepository {
	return dynamodb.NewMessageRepository(client, cfg.DynamoDBTable, cfg.GSI1IndexName, cfg.GSI2IndexName, logger)
}

// ProvideConnectionRepository creates a connection repository
func ProvideConnectionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ConnectionRepository {
	return dynamodb.NewConnectionRepository(client, cfg.DynamoDBTable, cfg.GSI1IndexName, cfg.GSI2IndexName, logger)
}

// ProvidePhotoStore creates the profile photo store
func ProvidePhotoStore(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.PhotoStore {
	return s3.NewPhotoStore(client, cfg.PhotoBucket, cfg.PhotoBaseURL, logger)
}

// ProvideEventBus creates the event bus. Without a configured bus name,
// events are dropped (local development).
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	if cfg.EventBusName == "" {
		logger.Info("No event bus configured, domain events will be dropped")
		return eventbridge.NewNoopBus()
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates the metrics recorder; disabled unless enabled in config
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	if !cfg.EnableMetrics {
		return observability.NewMetrics("HackMate", nil, logger)
	}
	return observability.NewMetrics("HackMate", client, logger)
}

// ProvideCache creates the in-memory cache
func ProvideCache() ports.Cache {
	return NewInMemoryCache()
}

// ProvideRegistry creates the live subscription registry
func ProvideRegistry(logger *zap.Logger) *subscriptions.Registry {
	return subscriptions.NewRegistry(logger)
}

// ProvideJWTValidator creates the token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     cfg.JWTSecret,
		Issuer:        cfg.JWTIssuer,
	})
}

// ProvideChatService creates the chat service
func ProvideChatService(
	messages ports.MessageRepository,
	registry *subscriptions.Registry,
	eventBus ports.EventBus,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.ChatService {
	return services.NewChatService(messages, registry, eventBus, metrics, logger)
}

// ProvideConversationService creates the conversation aggregation service
func ProvideConversationService(
	messages ports.MessageRepository,
	users ports.UserRepository,
	registry *subscriptions.Registry,
	cache ports.Cache,
	logger *zap.Logger,
) *services.ConversationService {
	return services.NewConversationService(messages, users, registry, cache, logger)
}

// ProvideConnectionService creates the connection service
func ProvideConnectionService(
	connections ports.ConnectionRepository,
	users ports.UserRepository,
	eventBus ports.EventBus,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.ConnectionService {
	return services.NewConnectionService(connections, users, eventBus, metrics, logger)
}

// ProvideProfileService creates the profile service
func ProvideProfileService(
	users ports.UserRepository,
	photos ports.PhotoStore,
	logger *zap.Logger,
) *services.ProfileService {
	return services.NewProfileService(users, photos, logger)
}
