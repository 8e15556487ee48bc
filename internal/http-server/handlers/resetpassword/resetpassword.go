// Package resetpassword реализует HTTP-обработчик установки нового пароля
// по одноразовому токену сброса.
package resetpassword

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/response"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/auth"
)

// Request — структура входных данных для установки нового пароля.
type Request struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=4"`
}

// Service описывает интерфейс бизнес-логики сброса пароля.
type Service interface {
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// Handler обрабатывает HTTP-запросы установки нового пароля.
type Handler struct {
	log      *slog.Logger
	auth     Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{
		log:      log,
		auth:     auth,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Установка нового пароля
// @Description Потребляет одноразовый токен сброса и сохраняет новый пароль.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Токен сброса и новый пароль"
// @Success 200 {object} response.Response "Пароль обновлён"
// @Failure 400 {object} response.Response "Токен неизвестен, истёк или уже использован"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /auth/reset-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.resetpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidResetToken) {
			log.Info("reset token rejected")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid or expired reset token"))
			return
		}
		log.Error("reset password failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("password reset success")
	render.JSON(w, r, response.OK("Password reset successfully"))
}
