// Package mware содержит middleware для HTTP‑сервера.
// Здесь реализована проверка токена доступа, включая журнал отозванных,
// и добавление данных пользователя в контекст запроса.
package mware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/response"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserUID — ключ для идентификатора пользователя в контексте
	UserUID Key = "user_uid"
	// Role — ключ для роли пользователя в контексте
	Role Key = "role"
)

// TokenValidator описывает интерфейс сервиса для проверки токена доступа.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*jwt.Claims, error)
}

// JWTMiddleware возвращает middleware, которое проверяет токен доступа
// в заголовке Authorization.
// Логика работы:
//  1. Считывает значение заголовка Authorization.
//  2. Проверяет, что он начинается с "Bearer ".
//  3. Валидирует токен, включая проверку журнала отозванных.
//  4. Кладёт идентификатор и роль пользователя в контекст запроса.
//  5. Передаёт управление следующему обработчику.
func JWTMiddleware(validator TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const op = "mware.JWTMiddleware"

			// общий log не переприсваивается: запросы обрабатываются конкурентно
			reqLog := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				reqLog.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))

				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := validator.ValidateAccessToken(r.Context(), tokenStr)
			if err != nil {
				reqLog.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))

				return
			}
			ctx := context.WithValue(r.Context(), UserUID, claims.Subject)
			ctx = context.WithValue(ctx, Role, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var limiter = rate.NewLimiter(10, 30)

// RateLimitMiddleware ограничивает частоту запросов к защищённым маршрутам.
func RateLimitMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Error("too many requests")
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
