package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hackmate-backend/application/services"
	"hackmate-backend/pkg/auth"
	"hackmate-backend/pkg/common"
	appErrors "hackmate-backend/pkg/errors"
	"hackmate-backend/pkg/utils"
)

// ChatHandler handles messaging requests
type ChatHandler struct {
	chats         *services.ChatService
	conversations *services.ConversationService
	errors        *appErrors.ErrorHandler
	logger        *zap.Logger
}

// NewChatHandler creates a chat handler
func NewChatHandler(chats *services.ChatService, conversations *services.ConversationService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chats:         chats,
		conversations: conversations,
		errors:        appErrors.NewErrorHandler(logger),
		logger:        logger,
	}
}

// SendMessageRequest is the request body for POST /chats/{userID}/messages
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// ListConversations handles GET /chats
func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	views, err := h.conversations.Snapshot(r.Context(), userCtx.UserID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, views)
}

// GetMessages handles GET /chats/{userID}/messages
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	partnerID := chi.URLParam(r, "userID")
	views, err := h.chats.History(r.Context(), userCtx.UserID, partnerID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, views)
}

// SendMessage handles POST /chats/{userID}/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	partnerID := chi.URLParam(r, "userID")
	view, err := h.chats.Send(r.Context(), userCtx.UserID, partnerID, req.Content)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, view)
}
