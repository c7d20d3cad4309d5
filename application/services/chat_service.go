package services

import (
	"context"

	"go.uber.org/zap"

	"hackmate-backend/application/ports"
	"hackmate-backend/application/subscriptions"
	"hackmate-backend/domain/core/entities"
	"hackmate-backend/domain/events"
	"hackmate-backend/pkg/observability"
)

// ChatService implements direct messaging between users
type ChatService struct {
	messages ports.MessageRepository
	registry *subscriptions.Registry
	eventBus ports.EventBus
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewChatService creates a chat service
func NewChatService(
	messages ports.MessageRepository,
	registry *subscriptions.Registry,
	eventBus ports.EventBus,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		messages: messages,
		registry: registry,
		eventBus: eventBus,
		metrics:  metrics,
		logger:   logger,
	}
}

// Send validates and persists a message from sender to receiver, then wakes
// both participants' live subscriptions. The store assigns the timestamp.
func (s *ChatService) Send(ctx context.Context, senderID, receiverID, content string) (MessageView, error) {
	msg, err := entities.NewMessage(senderID, receiverID, content)
	if err != nil {
		s.metrics.RecordMessageSent(ctx, err)
		return MessageView{}, err
	}

	stored, err := s.messages.Append(ctx, msg)
	if err != nil {
		s.metrics.RecordMessageSent(ctx, err)
		return MessageView{}, err
	}

	s.registry.Notify(stored.SenderID(), stored.ReceiverID())
	s.metrics.RecordMessageSent(ctx, nil)

	// Event publication is best effort; the message is already durable.
	event := events.NewMessageSent(stored.ID(), stored.SenderID(), stored.ReceiverID(), stored.Timestamp())
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish message event",
			zap.String("message_id", stored.ID().String()),
			zap.Error(err),
		)
	}

	s.logger.Debug("Message sent",
		zap.String("message_id", stored.ID().String()),
		zap.String("sender_id", stored.SenderID()),
		zap.String("receiver_id", stored.ReceiverID()),
	)

	return toMessageView(stored), nil
}

// History returns the full two-way conversation between the principal and
// a partner, oldest first
func (s *ChatService) History(ctx context.Context, principalID, partnerID string) ([]MessageView, error) {
	msgs, err := s.messages.GetConversation(ctx, principalID, partnerID)
	if err != nil {
		return nil, err
	}
	return toMessageViews(msgs), nil
}

// Subscribe opens a live view over the conversation between the principal
// and a partner. Every delivery is the complete ascending message history.
func (s *ChatService) Subscribe(ctx context.Context, principalID, partnerID string) *subscriptions.Subscription[[]MessageView] {
	return subscriptions.Open(ctx, s.registry, []string{principalID},
		func(ctx context.Context) ([]MessageView, error) {
			return s.History(ctx, principalID, partnerID)
		})
}
