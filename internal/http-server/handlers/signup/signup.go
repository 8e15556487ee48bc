// Package signup реализует HTTP-обработчик регистрации пользователя.
package signup

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
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/auth"
)

// Request — структура входных данных для регистрации.
// Поля businessName и businessAddress обязательны только для роли business,
// их проверка выполняется на бизнес-уровне.
type Request struct {
	Name            string           `json:"name" validate:"required,min=2,max=100"`
	Email           string           `json:"email" validate:"required,email"`
	PhoneNumber     string           `json:"phoneNumber" validate:"required,min=5,max=20"`
	Password        string           `json:"password" validate:"required,min=4"`
	Role            string           `json:"role" validate:"required,oneof=consumer business"`
	BusinessName    string           `json:"businessName"`
	BusinessAddress string           `json:"businessAddress"`
	Location        *models.Location `json:"location"`
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Signup(ctx context.Context, profile services.SignupProfile) (*services.AuthResult, error)
}

// Handler обрабатывает HTTP-запросы регистрации.
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
// @Summary Регистрация нового пользователя
// @Description Создает учетную запись и возвращает пару токенов.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные профиля"
// @Success 201 {object} response.Response "Пользователь создан"
// @Failure 400 {object} response.Response "Ошибка валидации или пользователь уже существует"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /auth/signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.signup"

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
	// тело запроса с паролем в лог не попадает
	log.Info("request body decoded")

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.auth.Signup(r.Context(), services.SignupProfile{
		Name:            req.Name,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Password:        req.Password,
		Role:            req.Role,
		BusinessName:    req.BusinessName,
		BusinessAddress: req.BusinessAddress,
		Location:        req.Location,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserExists):
			log.Info("user already exists")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("User already exists"))
		case errors.Is(err, services.ErrBusinessProfileRequired):
			log.Info("business profile incomplete")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("business name and address are required"))
		default:
			log.Error("signup failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("signup success", slog.String("user_uid", result.User.UID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData("Signup successful", map[string]any{
		"user":         result.User,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	}))
}
