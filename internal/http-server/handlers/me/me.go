// Package me реализует HTTP-обработчик получения профиля текущего
// пользователя. Маршрут защищён JWT middleware.
package me

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/mware"
	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/response"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// Service описывает интерфейс получения профиля пользователя.
type Service interface {
	GetUser(ctx context.Context, userUID string) (*models.PublicUser, error)
}

// Handler обрабатывает HTTP-запросы профиля.
type Handler struct {
	log  *slog.Logger
	auth Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{log: log, auth: auth}
}

// ServeHTTP godoc
// @Summary Профиль текущего пользователя
// @Description Возвращает публичную проекцию аутентифицированного пользователя.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Профиль пользователя"
// @Failure 401 {object} response.Response "Токен отсутствует или не валиден"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(mware.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("missing user uid in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	user, err := h.auth.GetUser(r.Context(), userUID)
	if err != nil {
		log.Error("failed to load user", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	render.JSON(w, r, response.OKWithData("OK", map[string]any{
		"user": user,
	}))
}
