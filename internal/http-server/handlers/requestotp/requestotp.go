// Package requestotp реализует HTTP-обработчик запроса одноразового кода
// подтверждения телефона. Ответ одинаков вне зависимости от существования
// пользователя.
package requestotp

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

// Request — структура входных данных для запроса кода.
type Request struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,min=5,max=20"`
}

// Service описывает интерфейс бизнес-логики запроса кода.
type Service interface {
	RequestOtp(ctx context.Context, phoneNumber string) error
}

// Handler обрабатывает HTTP-запросы одноразового кода.
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
// @Summary Запрос кода подтверждения телефона
// @Description Выпускает одноразовый код и отправляет его по внешнему каналу.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Номер телефона"
// @Success 200 {object} response.Response "Код отправлен"
// @Failure 400 {object} response.Response "Некорректный JSON или ошибка валидации"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /auth/request-otp [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.requestotp"

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

	if err := h.auth.RequestOtp(r.Context(), req.PhoneNumber); err != nil {
		log.Error("request otp failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("otp request processed")
	render.JSON(w, r, response.OK("If user exists, verification code sent"))
}
