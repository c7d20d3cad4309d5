// Package handlers contains the HTTP request handlers for the REST API
package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"hackmate-backend/application/services"
	"hackmate-backend/interfaces/http/rest/middleware"
	"hackmate-backend/pkg/auth"
	"hackmate-backend/pkg/common"
	appErrors "hackmate-backend/pkg/errors"
)

const sessionCookieMaxAge = 5 * 24 * time.Hour

// AuthHandler handles session establishment and teardown
type AuthHandler struct {
	profiles *services.ProfileService
	errors   *appErrors.ErrorHandler
	secure   bool
	logger   *zap.Logger
}

// NewAuthHandler creates an auth handler. secure controls the cookie's
// Secure flag and should be true outside local development.
func NewAuthHandler(profiles *services.ProfileService, secure bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		profiles: profiles,
		errors:   appErrors.NewErrorHandler(logger),
		secure:   secure,
		logger:   logger,
	}
}

// CreateSession handles POST /auth/session. The request is already
// authenticated; this sets the session cookie mirroring the bearer token
// and upserts the user's stub record.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	user, err := h.profiles.EnsureUser(r.Context(), userCtx.UserID, userCtx.Email, userCtx.Name, userCtx.PhotoURL)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if token := bearerToken(r); token != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(sessionCookieMaxAge.Seconds()),
			HttpOnly: true,
			Secure:   h.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	common.RespondJSON(w, http.StatusOK, user)
}

// DeleteSession handles DELETE /auth/session
func (h *AuthHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
