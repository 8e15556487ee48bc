// Package forgotpassword реализует HTTP-обработчик запроса сброса пароля.
// Ответ одинаков вне зависимости от существования пользователя.
package forgotpassword

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/marketplace-backend/internal/http-server/response"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
)

// Request — структура входных данных для запроса сброса пароля.
type Request struct {
	EmailOrPhone string `json:"emailOrPhone" validate:"required"`
}

// Service описывает интерфейс бизнес-логики запроса сброса.
type Service interface {
	ForgotPassword(ctx context.Context, identifier string) error
}

// Handler обрабатывает HTTP-запросы сброса пароля.
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
// @Summary Запрос сброса пароля
// @Description Выпускает одноразовый токен сброса и отправляет его по внешнему каналу.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email или телефон"
// @Success 200 {object} response.Response "Инструкции отправлены"
// @Failure 400 {object} response.Response "Некорректный JSON или ошибка валидации"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /auth/forgot-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.forgotpassword"

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

	if err := h.auth.ForgotPassword(r.Context(), req.EmailOrPhone); err != nil {
		log.Error("forgot password failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("forgot password processed")
	render.JSON(w, r, response.OK("If user exists, password reset instructions sent"))
}
