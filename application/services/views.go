// Package services contains the application layer: use cases that
// orchestrate domain entities, repositories, and live subscriptions.
package services

import (
	"time"

	"hackmate-backend/domain/core/entities"
)

// MessageView is the wire representation of a single message
type MessageView struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

func toMessageView(msg *entities.Message) MessageView {
	return MessageView{
		ID:         msg.ID().String(),
		SenderID:   msg.SenderID(),
		ReceiverID: msg.ReceiverID(),
		Content:    msg.Content(),
		Timestamp:  msg.Timestamp(),
	}
}

func toMessageViews(msgs []*entities.Message) []MessageView {
	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, toMessageView(m))
	}
	return views
}

// PartnerView is the subset of a partner's profile shown in the chat list
type PartnerView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl,omitempty"`
	College  string `json:"college,omitempty"`
	Course   string `json:"course,omitempty"`
}

// ConversationView is one entry in the per-user chat list: the partner
// plus the most recent message exchanged with them. Partner is nil when
// the profile lookup failed; the conversation still appears.
type ConversationView struct {
	PartnerID   string       `json:"partnerId"`
	Partner     *PartnerView `json:"partner,omitempty"`
	LastMessage MessageView  `json:"lastMessage"`
}

// UserView is the wire representation of a user profile
type UserView struct {
	ID                  string                    `json:"id"`
	Email               string                    `json:"email"`
	Profile             entities.Profile          `json:"profile"`
	Preferences         entities.TeamPreferences  `json:"preferences"`
	OnboardingCompleted bool                      `json:"onboardingCompleted"`
	CreatedAt           time.Time                 `json:"createdAt"`
	UpdatedAt           time.Time                 `json:"updatedAt"`
}

func toUserView(user *entities.User) UserView {
	return UserView{
		ID:                  user.ID(),
		Email:               user.Email(),
		Profile:             user.Profile(),
		Preferences:         user.Preferences(),
		OnboardingCompleted: user.OnboardingCompleted(),
		CreatedAt:           user.CreatedAt(),
		UpdatedAt:           user.UpdatedAt(),
	}
}

// ConnectionView is the wire representation of a team connection request
type ConnectionView struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"fromUserId"`
	ToUserID   string    `json:"toUserId"`
	Status     string    `json:"status"`
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toConnectionView(conn *entities.TeamConnection) ConnectionView {
	return ConnectionView{
		ID:         conn.ID().String(),
		FromUserID: conn.FromUserID(),
		ToUserID:   conn.ToUserID(),
		Status:     string(conn.Status()),
		Message:    conn.Message(),
		CreatedAt:  conn.CreatedAt(),
		UpdatedAt:  conn.UpdatedAt(),
	}
}

func toConnectionViews(conns []*entities.TeamConnection) []ConnectionView {
	views := make([]ConnectionView, 0, len(conns))
	for _, c := range conns {
		views = append(views, toConnectionView(c))
	}
	return views
}
