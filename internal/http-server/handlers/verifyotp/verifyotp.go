// Package verifyotp реализует HTTP-обработчик подтверждения телефона
// одноразовым кодом.
package verifyotp

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

// Request — структура входных данных для подтверждения телефона.
type Request struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,min=5,max=20"`
	Otp         string `json:"otp" validate:"required,len=6,numeric"`
}

// Service описывает интерфейс бизнес-логики подтверждения кода.
type Service interface {
	VerifyOtp(ctx context.Context, phoneNumber, code string) (*services.VerifyOtpResult, error)
}

// Handler обрабатывает HTTP-запросы подтверждения телефона.
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
// @Summary Подтверждение телефона
// @Description Проверяет одноразовый код, помечает телефон подтверждённым и выпускает новый токен доступа.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Номер телефона и код"
// @Success 200 {object} response.Response "Телефон подтверждён"
// @Failure 400 {object} response.Response "Код неизвестен, истёк или не совпал"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /auth/verify-otp [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.verifyotp"

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

	result, err := h.auth.VerifyOtp(r.Context(), req.PhoneNumber, req.Otp)
	if err != nil {
		if errors.Is(err, services.ErrInvalidOtp) {
			log.Info("otp rejected")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid or expired otp code"))
			return
		}
		log.Error("verify otp failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("otp verified", slog.String("user_uid", result.User.UID))
	render.JSON(w, r, response.OKWithData("OTP verified successfully", map[string]any{
		"user":        result.User,
		"accessToken": result.AccessToken,
	}))
}
