package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hackmate-backend/application/services"
	"hackmate-backend/domain/core/valueobjects"
	"hackmate-backend/pkg/auth"
	"hackmate-backend/pkg/common"
	appErrors "hackmate-backend/pkg/errors"
	"hackmate-backend/pkg/utils"
)

// ConnectionHandler handles team connection requests
type ConnectionHandler struct {
	connections *services.ConnectionService
	errors      *appErrors.ErrorHandler
	logger      *zap.Logger
}

// NewConnectionHandler creates a connection handler
func NewConnectionHandler(connections *services.ConnectionService, logger *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		connections: connections,
		errors:      appErrors.NewErrorHandler(logger),
		logger:      logger,
	}
}

// CreateConnectionRequest is the request body for POST /connections
type CreateConnectionRequest struct {
	ToUserID string `json:"toUserId" validate:"required"`
	Message  string `json:"message,omitempty" validate:"omitempty,max=1000"`
}

// RespondConnectionRequest is the request body for POST /connections/{connectionID}/respond
type RespondConnectionRequest struct {
	Response string `json:"response" validate:"required,oneof=accept reject cancel"`
}

// Create handles POST /connections
func (h *ConnectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req CreateConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	view, err := h.connections.Request(r.Context(), userCtx.UserID, req.ToUserID, req.Message)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, view)
}

// List handles GET /connections
func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	list, err := h.connections.ListForUser(r.Context(), userCtx.UserID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, list)
}

// CheckActive handles GET /connections/active?toUserId=...
func (h *ConnectionHandler) CheckActive(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	toUserID := r.URL.Query().Get("toUserId")
	if toUserID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "toUserId is required")
		return
	}

	active, err := h.connections.CheckActive(r.Context(), userCtx.UserID, toUserID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"active": active})
}

// Respond handles POST /connections/{connectionID}/respond
func (h *ConnectionHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	connectionID, err := valueobjects.NewConnectionIDFromString(chi.URLParam(r, "connectionID"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid connection id")
		return
	}

	var req RespondConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	view, err := h.connections.Respond(r.Context(), userCtx.UserID, connectionID, services.ConnectionResponse(req.Response))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, view)
}
