package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hackmate-backend/application/ports"
	"hackmate-backend/application/services"
	"hackmate-backend/domain/core/entities"
	"hackmate-backend/pkg/auth"
	appErrors "hackmate-backend/pkg/errors"
)

type stubUserRepo struct {
	users map[string]*entities.User
}

func (s *stubUserRepo) Save(ctx context.Context, user *entities.User) error {
	s.users[user.ID()] = user
	return nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, appErrors.NewNotFoundError("user")
	}
	return user, nil
}

func (s *stubUserRepo) List(ctx context.Context, excludeUserID string, filter ports.DiscoverFilter) ([]*entities.User, error) {
	return []*entities.User{}, nil
}

type stubPhotoStore struct {
	gotContentType string
	gotSize        int64
}

func (s *stubPhotoStore) Upload(ctx context.Context, userID, contentType string, size int64, body io.Reader) (string, error) {
	s.gotContentType = contentType
	s.gotSize = size
	return "https://photos.example.com/profile-photos/" + userID, nil
}

func newUploadFixture(t *testing.T) (*UserHandler, *stubPhotoStore) {
	t.Helper()
	now := time.Now().UTC()
	repo := &stubUserRepo{users: map[string]*entities.User{
		"alice": entities.ReconstructUser("alice", "alice@example.com",
			entities.Profile{Name: "Alice"}, entities.TeamPreferences{}, true, now, now),
	}}
	store := &stubPhotoStore{}
	profiles := services.NewProfileService(repo, store, zap.NewNop())
	return NewUserHandler(profiles, zap.NewNop()), store
}

func uploadRequest(body []byte, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/me/photo", bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	ctx := auth.SetUserInContext(req.Context(), &auth.UserContext{UserID: "alice"})
	return req.WithContext(ctx)
}

func TestUploadPhoto_ChunkedBodyMeasuredByActualSize(t *testing.T) {
	handler, store := newUploadFixture(t)

	payload := bytes.Repeat([]byte{0xff}, 2048)
	req := uploadRequest(payload, "image/png")
	// Chunked transfer encoding carries no Content-Length
	req.ContentLength = -1

	rec := httptest.NewRecorder()
	handler.UploadPhoto(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(2048), store.gotSize)
	assert.Equal(t, "image/png", store.gotContentType)

	var resp struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "https://photos.example.com/profile-photos/alice", resp.Data["photoUrl"])
}

func TestUploadPhoto_OversizedBodyRejected(t *testing.T) {
	handler, _ := newUploadFixture(t)

	payload := bytes.Repeat([]byte{0xff}, services.MaxPhotoSize+2048)
	req := uploadRequest(payload, "image/jpeg")
	req.ContentLength = -1

	rec := httptest.NewRecorder()
	handler.UploadPhoto(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), appErrors.CodePhotoTooLarge)
}

func TestUploadPhoto_EmptyBodyRejected(t *testing.T) {
	handler, _ := newUploadFixture(t)

	req := uploadRequest(nil, "image/png")
	req.ContentLength = -1

	rec := httptest.NewRecorder()
	handler.UploadPhoto(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty")
}

func TestUploadPhoto_BadContentTypeRejected(t *testing.T) {
	handler, _ := newUploadFixture(t)

	req := uploadRequest([]byte("gif bytes"), "image/gif")

	rec := httptest.NewRecorder()
	handler.UploadPhoto(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), appErrors.CodePhotoBadType)
}
