package services

import (
	"context"

	"go.uber.org/zap"

	"hackmate-backend/application/ports"
	"hackmate-backend/application/subscriptions"
	"hackmate-backend/domain/core/entities"
)

// profileCacheTTL bounds staleness of partner profiles in the chat list
const profileCacheTTL = 300

// ConversationService builds the per-user chat list: one entry per partner,
// carrying the latest message and the partner's profile
type ConversationService struct {
	messages ports.MessageRepository
	users    ports.UserRepository
	registry *subscriptions.Registry
	cache    ports.Cache
	logger   *zap.Logger
}

// NewConversationService creates a conversation aggregation service
func NewConversationService(
	messages ports.MessageRepository,
	users ports.UserRepository,
	registry *subscriptions.Registry,
	cache ports.Cache,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		messages: messages,
		users:    users,
		registry: registry,
		cache:    cache,
		logger:   logger,
	}
}

// Snapshot aggregates the user's messages into conversations. Messages come
// back newest first, so the first message seen for a partner is the latest
// one; later messages for the same partner are skipped. Conversations are
// ordered by recency as a consequence of the scan order.
func (s *ConversationService) Snapshot(ctx context.Context, userID string) ([]ConversationView, error) {
	msgs, err := s.messages.GetAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	views := make([]ConversationView, 0)
	for _, msg := range msgs {
		partnerID := msg.PartnerOf(userID)
		if partnerID == "" {
			continue
		}
		if _, ok := seen[partnerID]; ok {
			continue
		}
		seen[partnerID] = struct{}{}

		views = append(views, ConversationView{
			PartnerID:   partnerID,
			Partner:     s.lookupPartner(ctx, partnerID),
			LastMessage: toMessageView(msg),
		})
	}
	return views, nil
}

// Subscribe opens a live view over the user's chat list
func (s *ConversationService) Subscribe(ctx context.Context, userID string) *subscriptions.Subscription[[]ConversationView] {
	return subscriptions.Open(ctx, s.registry, []string{userID},
		func(ctx context.Context) ([]ConversationView, error) {
			return s.Snapshot(ctx, userID)
		})
}

// lookupPartner resolves a partner profile, serving from cache when warm.
// A failed lookup returns nil; the conversation entry ships without the
// profile rather than failing the whole snapshot.
func (s *ConversationService) lookupPartner(ctx context.Context, partnerID string) *PartnerView {
	cacheKey := "partner:" + partnerID
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		if view, ok := cached.(*PartnerView); ok {
			return view
		}
	}

	user, err := s.users.GetByID(ctx, partnerID)
	if err != nil {
		s.logger.Warn("Partner profile lookup failed",
			zap.String("partner_id", partnerID),
			zap.Error(err),
		)
		return nil
	}

	view := partnerViewOf(user)
	if err := s.cache.Set(ctx, cacheKey, view, profileCacheTTL); err != nil {
		s.logger.Debug("Failed to cache partner profile", zap.Error(err))
	}
	return view
}

func partnerViewOf(user *entities.User) *PartnerView {
	profile := user.Profile()
	return &PartnerView{
		ID:       user.ID(),
		Name:     profile.Name,
		PhotoURL: profile.PhotoURL,
		College:  profile.College,
		Course:   profile.Course,
	}
}
