package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandle_AppErrorMapsStatusAndBody(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/connections", nil)
	req.Header.Set("X-Request-ID", "req-123")

	handler.Handle(rec, req, NewDuplicateRequestError("alice", "bob"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Error)
	assert.Equal(t, string(ErrorTypeConflict), resp.Type)
	assert.Equal(t, CodeDuplicateRequest, resp.Code)
	assert.Equal(t, "req-123", resp.RequestID)
	assert.Equal(t, "alice", resp.Details["fromUserId"])
}

func TestHandle_PlainErrorIsOpaque(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)

	handler.Handle(rec, req, stderrors.New("pq: secret table missing"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, string(ErrorTypeInternal), resp.Type)
	assert.Equal(t, "An internal error occurred", resp.Message)
	assert.NotContains(t, rec.Body.String(), "secret table")
}

func TestHandle_ZeroStatusFallsBackTo500(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	handler.Handle(rec, req, &AppError{Type: ErrorTypeInternal, Message: "no status set"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandle_NilErrorWritesNothing(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	handler.Handle(rec, req, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestHandle_WrappedAppErrorKeepsStatus(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/bob", nil)

	handler.Handle(rec, req, Wrap(NewNotFoundError("user"), "loading profile"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, string(ErrorTypeNotFound), resp.Type)
}
