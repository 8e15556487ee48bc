package me

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/mware"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) GetUser(ctx context.Context, userUID string) (*models.PublicUser, error) {
	args := m.Called(ctx, userUID)
	user, _ := args.Get(0).(*models.PublicUser)
	return user, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestMeHandler_ServeHTTP(t *testing.T) {
	t.Run("returns profile of authenticated user", func(t *testing.T) {
		authMock := new(AuthServiceMock)
		handler := New(newNoopLogger(), authMock)

		authMock.On("GetUser", mock.Anything, "user-uid-1").Return(&models.PublicUser{
			UID:   "user-uid-1",
			Email: "a@x.com",
			Role:  models.RoleConsumer,
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), mware.UserUID, "user-uid-1"))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var got map[string]any
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, true, got["success"])

		data := got["data"].(map[string]any)
		user := data["user"].(map[string]any)
		assert.Equal(t, "user-uid-1", user["id"])
		assert.Equal(t, "a@x.com", user["email"])
		authMock.AssertExpectations(t)
	})

	t.Run("missing uid in context", func(t *testing.T) {
		authMock := new(AuthServiceMock)
		handler := New(newNoopLogger(), authMock)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		authMock.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("deleted user", func(t *testing.T) {
		authMock := new(AuthServiceMock)
		handler := New(newNoopLogger(), authMock)

		authMock.On("GetUser", mock.Anything, "user-uid-1").
			Return(nil, services.ErrUnauthorized).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), mware.UserUID, "user-uid-1"))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
