// Package logout реализует HTTP-обработчик выхода пользователя.
// Предъявленный токен доступа отзывается: его идентификатор попадает
// в журнал отозванных до конца срока жизни токена.
package logout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/response"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/auth"
)

// Service описывает интерфейс бизнес-логики выхода.
type Service interface {
	Logout(ctx context.Context, accessToken string) error
}

// Handler обрабатывает HTTP-запросы выхода.
type Handler struct {
	log  *slog.Logger
	auth Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{log: log, auth: auth}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Отзывает предъявленный токен доступа.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Выход выполнен"
// @Failure 401 {object} response.Response "Токен отсутствует или не валиден"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		log.Error("missing or invalid authorization header")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing or invalid authorization header"))
		return
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	if err := h.auth.Logout(r.Context(), tokenStr); err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			log.Info("logout rejected")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid or expired token"))
			return
		}
		log.Error("logout failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("logout success")
	render.JSON(w, r, response.OK("Logged out successfully"))
}
