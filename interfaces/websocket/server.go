// Package websocket serves the live streams over a WebSocket connection.
// Clients subscribe to the conversations stream or to per-partner message
// streams; every delivery is a full snapshot of the stream's query.
package websocket

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"hackmate-backend/application/services"
	"hackmate-backend/interfaces/http/rest/middleware"
)

// maxConnectionsPerUser bounds fan-out per account
const maxConnectionsPerUser = 10

// Server upgrades HTTP requests to WebSocket connections
type Server struct {
	chats         *services.ChatService
	conversations *services.ConversationService
	metrics       subscriptionMetrics
	authenticator *middleware.Authenticator
	upgrader      websocket.Upgrader
	logger        *zap.Logger

	mu     sync.Mutex
	counts map[string]int // userID -> open connections
}

// NewServer creates a WebSocket server
func NewServer(
	chats *services.ChatService,
	conversations *services.ConversationService,
	metrics subscriptionMetrics,
	authenticator *middleware.Authenticator,
	checkOrigin func(r *http.Request) bool,
	logger *zap.Logger,
) *Server {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Server{
		chats:         chats,
		conversations: conversations,
		metrics:       metrics,
		authenticator: authenticator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger,
		counts: make(map[string]int),
	}
}

// HandleWebSocket handles GET /ws. Browsers cannot set headers on the
// upgrade request, so authentication falls back to the session cookie.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userCtx, err := s.authenticator.ValidateRequest(r)
	if err != nil {
		s.logger.Debug("WebSocket authentication failed",
			zap.Error(err),
			zap.String("remote_addr", r.RemoteAddr),
		)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if !s.acquireSlot(userCtx.UserID) {
		http.Error(w, "Too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.releaseSlot(userCtx.UserID)
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	userID := userCtx.UserID
	client := NewClient(userID, conn, s.chats, s.conversations, s.metrics, func() {
		s.releaseSlot(userID)
	}, s.logger)
	client.Start()

	s.logger.Info("WebSocket connection established",
		zap.String("user_id", userCtx.UserID),
	)
}

func (s *Server) acquireSlot(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts[userID] >= maxConnectionsPerUser {
		return false
	}
	s.counts[userID]++
	return true
}

func (s *Server) releaseSlot(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts[userID] > 1 {
		s.counts[userID]--
	} else {
		delete(s.counts, userID)
	}
}
