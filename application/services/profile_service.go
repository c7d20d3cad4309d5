package services

import (
	"context"
	"io"

	"go.uber.org/zap"

	"hackmate-backend/application/ports"
	"hackmate-backend/domain/core/entities"
	appErrors "hackmate-backend/pkg/errors"
	"hackmate-backend/pkg/common"
)

// MaxPhotoSize is the upload limit for profile photos (5 MB)
const MaxPhotoSize = 5 * 1024 * 1024

var allowedPhotoTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

// ProfileService implements user profiles and discovery
type ProfileService struct {
	users  ports.UserRepository
	photos ports.PhotoStore
	logger *zap.Logger
}

// NewProfileService creates a profile service
func NewProfileService(users ports.UserRepository, photos ports.PhotoStore, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		users:  users,
		photos: photos,
		logger: logger,
	}
}

// EnsureUser returns the user's profile, creating a stub record on first
// sign-in. The stub carries identity-provider fields and has onboarding
// incomplete until the profile is filled in.
func (s *ProfileService) EnsureUser(ctx context.Context, id, email, name, photoURL string) (UserView, error) {
	user, err := s.users.GetByID(ctx, id)
	if err == nil {
		return toUserView(user), nil
	}
	if !appErrors.IsNotFound(err) {
		return UserView{}, err
	}

	stub, err := entities.NewUserStub(id, email, name, photoURL)
	if err != nil {
		return UserView{}, err
	}
	if err := s.users.Save(ctx, stub); err != nil {
		return UserView{}, err
	}

	s.logger.Info("Created user stub on first sign-in", zap.String("user_id", id))
	return toUserView(stub), nil
}

// Get retrieves a user's profile
func (s *ProfileService) Get(ctx context.Context, id string) (UserView, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return UserView{}, err
	}
	return toUserView(user), nil
}

// Update replaces the principal's profile and team preferences. A
// successful update marks onboarding complete.
func (s *ProfileService) Update(ctx context.Context, id string, profile entities.Profile, preferences entities.TeamPreferences) (UserView, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return UserView{}, err
	}

	if err := user.UpdateProfile(profile, preferences); err != nil {
		return UserView{}, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return UserView{}, err
	}

	s.logger.Info("Profile updated", zap.String("user_id", id))
	return toUserView(user), nil
}

// UploadPhoto stores a profile photo and records its URL on the profile.
// Only JPEG and PNG up to 5 MB are accepted; each user has one photo slot,
// re-uploads overwrite it.
func (s *ProfileService) UploadPhoto(ctx context.Context, userID, contentType string, size int64, body io.Reader) (string, error) {
	if _, ok := allowedPhotoTypes[contentType]; !ok {
		return "", appErrors.NewValidationError("photo must be a JPEG or PNG image").
			WithCode(appErrors.CodePhotoBadType)
	}
	if size <= 0 {
		return "", appErrors.NewValidationError("photo body is empty")
	}
	if size > MaxPhotoSize {
		return "", appErrors.NewValidationError("photo must be 5MB or smaller").
			WithCode(appErrors.CodePhotoTooLarge)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.photos.Upload(ctx, userID, contentType, size, body)
	if err != nil {
		return "", err
	}

	user.SetPhotoURL(url)
	if err := s.users.Save(ctx, user); err != nil {
		return "", err
	}

	s.logger.Info("Profile photo uploaded", zap.String("user_id", userID))
	return url, nil
}

// Discover lists other users for the team-finding page, excluding the
// principal, with optional attribute filters and pagination
func (s *ProfileService) Discover(ctx context.Context, principalID string, filter ports.DiscoverFilter, params common.PaginationParams) ([]UserView, *common.PaginationInfo, error) {
	users, err := s.users.List(ctx, principalID, filter)
	if err != nil {
		return nil, nil, err
	}

	total := len(users)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}

	views := make([]UserView, 0, end-start)
	for _, u := range users[start:end] {
		views = append(views, toUserView(u))
	}
	return views, common.BuildPaginationInfo(params, total), nil
}
