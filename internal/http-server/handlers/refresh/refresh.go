// Package refresh реализует HTTP-обработчик обновления токена доступа
// по действующему токену обновления.
package refresh

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

// Request — структура входных данных для обновления токена.
type Request struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Service описывает интерфейс бизнес-логики обновления токена.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Handler обрабатывает HTTP-запросы обновления токена.
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
// @Summary Обновление токена доступа
// @Description Выпускает новый токен доступа по действующему refresh-токену.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Токен обновления"
// @Success 200 {object} response.Response "Новый токен доступа"
// @Failure 400 {object} response.Response "Некорректный JSON или ошибка валидации"
// @Failure 401 {object} response.Response "Токен обновления не валиден или истёк"
// @Router /auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.refresh"

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

	accessToken, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			log.Info("refresh rejected")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("Invalid refresh token"))
			return
		}
		log.Error("refresh failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("refresh success")
	render.JSON(w, r, response.OKWithData("Token refreshed", map[string]any{
		"accessToken": accessToken,
	}))
}
