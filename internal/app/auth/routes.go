// Package auth собирает HTTP-приложение сервиса аутентификации.
package auth

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/handlers/forgotpassword"
	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/handlers/login"
	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/handlers/logout"
	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/handlers/me"
	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/handlers/refresh"
	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/handlers/requestotp"
	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/handlers/resetpassword"
	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/handlers/signup"
	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/handlers/verifyotp"
	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/mware"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/auth"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *services.AuthService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1/auth", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Post("/signup", signup.New(logger, authService).ServeHTTP)
		r.Post("/refresh", refresh.New(logger, authService).ServeHTTP)
		r.Post("/forgot-password", forgotpassword.New(logger, authService).ServeHTTP)
		r.Post("/reset-password", resetpassword.New(logger, authService).ServeHTTP)
		r.Post("/request-otp", requestotp.New(logger, authService).ServeHTTP)
		r.Post("/verify-otp", verifyotp.New(logger, authService).ServeHTTP)

		// Группа с проверкой токена доступа
		r.Group(func(r chi.Router) {
			r.Use(mware.JWTMiddleware(authService, logger))
			r.Use(mware.RateLimitMiddleware(logger))
			r.Post("/logout", logout.New(logger, authService).ServeHTTP)
			r.Get("/me", me.New(logger, authService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
