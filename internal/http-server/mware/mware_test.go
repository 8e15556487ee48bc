package mware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/middleware"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/marketplace-backend/internal/lib/jwt"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/auth"
)

type ValidatorMock struct {
	mock.Mock
}

func (m *ValidatorMock) ValidateAccessToken(ctx context.Context, token string) (*jwt.Claims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*jwt.Claims)
	return claims, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	t.Run("valid token puts claims into context", func(t *testing.T) {
		validatorMock := new(ValidatorMock)
		validatorMock.On("ValidateAccessToken", mock.Anything, "good-token").Return(&jwt.Claims{
			Role:      "consumer",
			TokenType: jwt.TokenTypeAccess,
			RegisteredClaims: gojwt.RegisteredClaims{
				Subject: "user-uid-1",
			},
		}, nil).Once()

		var gotUID, gotRole any
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUID = r.Context().Value(UserUID)
			gotRole = r.Context().Value(Role)
			w.WriteHeader(http.StatusOK)
		})

		handler := JWTMiddleware(validatorMock, newNoopLogger())(next)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-uid-1", gotUID)
		assert.Equal(t, "consumer", gotRole)
		validatorMock.AssertExpectations(t)
	})

	t.Run("missing header", func(t *testing.T) {
		validatorMock := new(ValidatorMock)
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not be called")
		})

		handler := JWTMiddleware(validatorMock, newNoopLogger())(next)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var got map[string]any
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, false, got["success"])
		assert.Equal(t, "missing or invalid authorization header", got["message"])
	})

	t.Run("header without bearer prefix", func(t *testing.T) {
		validatorMock := new(ValidatorMock)
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not be called")
		})

		handler := JWTMiddleware(validatorMock, newNoopLogger())(next)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejected token", func(t *testing.T) {
		validatorMock := new(ValidatorMock)
		validatorMock.On("ValidateAccessToken", mock.Anything, "bad-token").
			Return(nil, services.ErrUnauthorized).Once()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not be called")
		})

		handler := JWTMiddleware(validatorMock, newNoopLogger())(next)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var got map[string]any
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "invalid or expired token", got["message"])
		validatorMock.AssertExpectations(t)
	})
}

func TestJWTMiddlewareConcurrentRequests(t *testing.T) {
	validatorMock := new(ValidatorMock)
	validatorMock.On("ValidateAccessToken", mock.Anything, "good-token").Return(&jwt.Claims{
		Role:      "consumer",
		TokenType: jwt.TokenTypeAccess,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject: "user-uid-1",
		},
	}, nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := JWTMiddleware(validatorMock, newNoopLogger())(next)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				req := httptest.NewRequest(http.MethodGet, "/protected", nil)
				req.Header.Set("Authorization", "Bearer good-token")
				req = req.WithContext(context.WithValue(req.Context(),
					middleware.RequestIDKey, strconv.Itoa(i)))
				rec := httptest.NewRecorder()

				handler.ServeHTTP(rec, req)

				if rec.Code != http.StatusOK {
					t.Errorf("unexpected status: %d", rec.Code)
				}
			}
		}()
	}
	wg.Wait()
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := RateLimitMiddleware(newNoopLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
