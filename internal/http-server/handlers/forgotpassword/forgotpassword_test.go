package forgotpassword

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) ForgotPassword(ctx context.Context, identifier string) error {
	args := m.Called(ctx, identifier)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestForgotPasswordHandler_ServeHTTP(t *testing.T) {
	authMock := new(AuthServiceMock)
	logger := newNoopLogger()

	handler := New(logger, authMock)

	tests := []struct {
		name           string
		requestBody    interface{}
		useMock        bool
		wantStatusCode int
		wantSuccess    bool
		wantMessage    string
	}{
		{
			name:           "known identifier",
			requestBody:    Request{EmailOrPhone: "a@x.com"},
			useMock:        true,
			wantStatusCode: http.StatusOK,
			wantSuccess:    true,
			wantMessage:    "If user exists, password reset instructions sent",
		},
		{
			// сервис отвечает одинаково для неизвестного идентификатора
			name:           "unknown identifier",
			requestBody:    Request{EmailOrPhone: "nobody@x.com"},
			useMock:        true,
			wantStatusCode: http.StatusOK,
			wantSuccess:    true,
			wantMessage:    "If user exists, password reset instructions sent",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantSuccess:    false,
			wantMessage:    "invalid request body",
		},
		{
			name:           "validation error - missing identifier",
			requestBody:    Request{},
			wantStatusCode: http.StatusBadRequest,
			wantSuccess:    false,
			wantMessage:    "field EmailOrPhone is a required field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock.ExpectedCalls = nil
			authMock.Calls = nil

			if tt.useMock {
				authMock.On("ForgotPassword", mock.Anything, tt.requestBody.(Request).EmailOrPhone).
					Return(nil).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/forgot-password", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantSuccess, got["success"])
			assert.Equal(t, tt.wantMessage, got["message"])

			if tt.useMock {
				authMock.AssertExpectations(t)
			}
		})
	}
}
