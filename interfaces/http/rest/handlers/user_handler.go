package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hackmate-backend/application/ports"
	"hackmate-backend/application/services"
	"hackmate-backend/domain/core/entities"
	"hackmate-backend/pkg/auth"
	"hackmate-backend/pkg/common"
	appErrors "hackmate-backend/pkg/errors"
	"hackmate-backend/pkg/utils"
)

// maxPhotoBodyBytes caps the photo upload body slightly above the stored
// limit so oversized uploads fail with a clear validation error rather
// than a truncated read
const maxPhotoBodyBytes = services.MaxPhotoSize + 1024

// UserHandler handles profile and discovery requests
type UserHandler struct {
	profiles *services.ProfileService
	errors   *appErrors.ErrorHandler
	logger   *zap.Logger
}

// NewUserHandler creates a user handler
func NewUserHandler(profiles *services.ProfileService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		profiles: profiles,
		errors:   appErrors.NewErrorHandler(logger),
		logger:   logger,
	}
}

// UpdateProfileRequest is the request body for PUT /users/me
type UpdateProfileRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Bio      string `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Skills   string `json:"skills,omitempty" validate:"omitempty,max=500"`
	College  string `json:"college,omitempty" validate:"omitempty,max=200"`
	Course   string `json:"course,omitempty" validate:"omitempty,max=100"`
	Branch   string `json:"branch,omitempty" validate:"omitempty,max=100"`
	Semester string `json:"semester,omitempty" validate:"omitempty,max=20"`
	Role     string `json:"role,omitempty" validate:"omitempty,max=100"`
	LinkedIn string `json:"linkedIn,omitempty" validate:"omitempty,url"`
	GitHub   string `json:"github,omitempty" validate:"omitempty,url"`

	TeamStatus               string   `json:"teamStatus" validate:"required,oneof=looking_for_team in_team not_looking"`
	ExperienceLevel          string   `json:"experienceLevel" validate:"required,oneof=beginner intermediate advanced"`
	ProjectInterests         []string `json:"projectInterests,omitempty" validate:"omitempty,max=20,dive,max=100"`
	HackathonInterests       []string `json:"hackathonInterests,omitempty" validate:"omitempty,max=20,dive,max=100"`
	PreferredTeamSize        string   `json:"preferredTeamSize,omitempty" validate:"omitempty,max=20"`
	AvailabilityPreference   string   `json:"availabilityPreference,omitempty" validate:"omitempty,max=100"`
	CommunicationPreferences []string `json:"communicationPreferences,omitempty" validate:"omitempty,max=10,dive,max=50"`
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	user, err := h.profiles.Get(r.Context(), userCtx.UserID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}

// UpdateMe handles PUT /users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	user, err := h.profiles.Update(r.Context(), userCtx.UserID,
		entities.Profile{
			Name:     req.Name,
			Bio:      req.Bio,
			Skills:   req.Skills,
			College:  req.College,
			Course:   req.Course,
			Branch:   req.Branch,
			Semester: req.Semester,
			Role:     req.Role,
			LinkedIn: req.LinkedIn,
			GitHub:   req.GitHub,
		},
		entities.TeamPreferences{
			TeamStatus:               entities.TeamStatus(req.TeamStatus),
			ExperienceLevel:          entities.ExperienceLevel(req.ExperienceLevel),
			ProjectInterests:         req.ProjectInterests,
			HackathonInterests:       req.HackathonInterests,
			PreferredTeamSize:        req.PreferredTeamSize,
			AvailabilityPreference:   req.AvailabilityPreference,
			CommunicationPreferences: req.CommunicationPreferences,
		})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}

// UploadPhoto handles POST /users/me/photo. The photo arrives as the raw
// request body with its Content-Type header. The body is buffered so the
// size check covers chunked uploads, which carry no Content-Length.
func (h *UserHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxPhotoBodyBytes)
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError("photo must be 5MB or smaller").
			WithCode(appErrors.CodePhotoTooLarge))
		return
	}

	url, err := h.profiles.UploadPhoto(r.Context(), userCtx.UserID,
		r.Header.Get("Content-Type"), int64(len(data)), bytes.NewReader(data))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"photoUrl": url})
}

// GetUser handles GET /users/{userID}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	user, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}

// ListUsers handles GET /users with discover filters and pagination
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	query := r.URL.Query()
	filter := ports.DiscoverFilter{
		ProjectInterest: query.Get("projectInterest"),
		ExperienceLevel: query.Get("experienceLevel"),
		TeamStatus:      query.Get("teamStatus"),
	}
	params := common.ExtractPaginationParams(r)

	users, pagination, err := h.profiles.Discover(r.Context(), userCtx.UserID, filter, params)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSONWithMeta(w, http.StatusOK, users, &common.MetaInfo{Pagination: pagination})
}
