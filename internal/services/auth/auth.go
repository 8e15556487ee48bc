// Package services содержит логику бизнес-уровня для аутентификации
// пользователей: вход, регистрация, выход, обновление и сброс доступа.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/marketplace-backend/internal/config"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/otp"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/password"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	"github.com/magabrotheeeer/marketplace-backend/internal/storage"
)

// Ошибки бизнес-уровня. Обработчики отображают их в HTTP статусы.
var (
	// ErrInvalidCredentials неверный идентификатор или пароль.
	// Единая ошибка для обоих случаев, чтобы не раскрывать существование пользователя.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists пользователь с таким email или телефоном уже зарегистрирован
	ErrUserExists = errors.New("user already exists")
	// ErrUnauthorized токен отсутствует, не валиден, отозван или истёк
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidResetToken токен сброса неизвестен, истёк или уже использован
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	// ErrInvalidOtp код подтверждения неизвестен, истёк или не совпал
	ErrInvalidOtp = errors.New("invalid or expired otp code")
	// ErrBusinessProfileRequired для роли business обязательны название и адрес бизнеса
	ErrBusinessProfileRequired = errors.New("business name and address are required")
)

// Хэш несуществующего пароля. Сравнение с ним выравнивает время ответа
// при неизвестном идентификаторе.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя атомарно и возвращает его UID.
	// Уникальность email и телефона обеспечивает хранилище.
	CreateUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmailOrPhone возвращает пользователя по email или номеру телефона.
	GetUserByEmailOrPhone(ctx context.Context, identifier string) (*models.User, error)

	// GetUser возвращает пользователя по его UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)

	UpdateLastLogin(ctx context.Context, userUID string, at time.Time) error
	UpdatePasswordHash(ctx context.Context, userUID, passwordHash string) error
	MarkPhoneVerified(ctx context.Context, userUID string) error
}

// SessionCache описывает хранилище короткоживущего состояния сессий.
type SessionCache interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	StoreResetToken(ctx context.Context, token, userUID string, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, token string) (string, bool, error)
	StoreOtp(ctx context.Context, phoneNumber, codeHash string, ttl time.Duration) error
	ConsumeOtp(ctx context.Context, phoneNumber string) (string, bool, error)
}

// NoticePublisher публикует уведомления для внеполосной доставки.
type NoticePublisher interface {
	PublishResetNotice(notice models.ResetNotice) error
	PublishOtpNotice(notice models.OtpNotice) error
}

// AuthService отвечает за проверку учётных данных и выпуск токенов.
type AuthService struct {
	users    UserRepository
	sessions SessionCache
	notifier NoticePublisher
	jwtMaker jwt.Maker
	tokens   config.Tokens
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, sessions SessionCache, notifier NoticePublisher,
	jwtMaker jwt.Maker, tokens config.Tokens, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		notifier: notifier,
		jwtMaker: jwtMaker,
		tokens:   tokens,
		log:      log,
	}
}

// AuthResult результат успешного входа или регистрации.
type AuthResult struct {
	User         *models.PublicUser
	AccessToken  string
	RefreshToken string
}

// SignupProfile данные для регистрации нового пользователя.
type SignupProfile struct {
	Name            string
	Email           string
	PhoneNumber     string
	Password        string
	Role            string
	BusinessName    string
	BusinessAddress string
	Location        *models.Location
}

// Login проверяет пароль пользователя по email или телефону и выпускает
// пару токенов. Неизвестный идентификатор и неверный пароль дают одну
// и ту же ошибку ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, rawPassword string) (*AuthResult, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmailOrPhone(ctx, identifier)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			_ = password.CompareHash(dummyHash, rawPassword)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.UID, now); err != nil {
		// вход не зависит от отметки последнего входа
		s.log.Error("failed to update last login", sl.Err(err))
	} else {
		user.LastLoginAt = &now
	}

	return s.issueTokenPair(user)
}

// Signup регистрирует нового пользователя и выпускает пару токенов.
// Для роли business обязательны название и адрес бизнеса, для consumer
// эти поля игнорируются. Дубликат email или телефона дает ErrUserExists.
func (s *AuthService) Signup(ctx context.Context, profile SignupProfile) (*AuthResult, error) {
	const op = "services.auth.Signup"

	switch profile.Role {
	case models.RoleBusiness:
		if profile.BusinessName == "" || profile.BusinessAddress == "" {
			return nil, ErrBusinessProfileRequired
		}
	default:
		profile.BusinessName = ""
		profile.BusinessAddress = ""
	}

	hashed, err := password.GetHash(profile.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	uid, err := s.users.CreateUser(ctx, models.User{
		Name:            profile.Name,
		Email:           profile.Email,
		PhoneNumber:     profile.PhoneNumber,
		PasswordHash:    hashed,
		Role:            profile.Role,
		BusinessName:    profile.BusinessName,
		BusinessAddress: profile.BusinessAddress,
		Location:        profile.Location,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.issueTokenPair(user)
}

// Logout отзывает предъявленный токен доступа: его идентификатор попадает
// в журнал отозванных на оставшееся время жизни токена.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	const op = "services.auth.Logout"

	claims, err := s.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		return err
	}
	if err := s.sessions.RevokeToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Refresh выпускает новый токен доступа по действующему токену обновления.
// Токен обновления не ротируется. Роль перечитывается из хранилища.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	const op = "services.auth.Refresh"

	claims, err := s.jwtMaker.ParseToken(refreshToken)
	if err != nil {
		return "", ErrUnauthorized
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return "", ErrUnauthorized
	}
	revoked, err := s.sessions.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		return "", ErrUnauthorized
	}

	user, err := s.users.GetUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	access, err := s.jwtMaker.GenerateAccessToken(user.UID, user.Role)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return access, nil
}

// ValidateAccessToken проверяет токен доступа, включая журнал отозванных,
// и возвращает его claims. Используется middleware защищённых маршрутов.
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*jwt.Claims, error) {
	claims, err := s.jwtMaker.ParseToken(accessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if claims.TokenType != jwt.TokenTypeAccess {
		return nil, ErrUnauthorized
	}
	revoked, err := s.sessions.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// GetUser возвращает публичную проекцию пользователя по UID.
func (s *AuthService) GetUser(ctx context.Context, userUID string) (*models.PublicUser, error) {
	const op = "services.auth.GetUser"
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user.Public(), nil
}

// ForgotPassword выпускает одноразовый токен сброса пароля и публикует
// уведомление для внеполосной доставки. Ответ одинаков вне зависимости
// от существования пользователя: сбои после поиска только логируются,
// иначе код ответа выдавал бы существование учётной записи.
func (s *AuthService) ForgotPassword(ctx context.Context, identifier string) error {
	const op = "services.auth.ForgotPassword"

	user, err := s.users.GetUserByEmailOrPhone(ctx, identifier)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	token, err := generateResetToken()
	if err != nil {
		s.log.Error("failed to generate reset token", slog.String("op", op), sl.Err(err))
		return nil
	}
	if err := s.sessions.StoreResetToken(ctx, token, user.UID, s.tokens.ResetTokenTTL); err != nil {
		s.log.Error("failed to store reset token", slog.String("op", op), sl.Err(err))
		return nil
	}
	if err := s.notifier.PublishResetNotice(models.ResetNotice{
		Email:      user.Email,
		Name:       user.Name,
		ResetToken: token,
	}); err != nil {
		s.log.Error("failed to publish reset notice", slog.String("op", op), sl.Err(err))
	}
	return nil
}

// ResetPassword потребляет токен сброса и сохраняет новый хэш пароля.
// Неизвестный, истёкший или уже использованный токен дает ErrInvalidResetToken.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	const op = "services.auth.ResetPassword"

	userUID, found, err := s.sessions.ConsumeResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return ErrInvalidResetToken
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userUID, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RequestOtp выпускает одноразовый код подтверждения телефона и публикует
// уведомление для доставки. Ответ одинаков вне зависимости от существования
// пользователя: сбои после поиска только логируются, иначе код ответа
// выдавал бы существование учётной записи.
func (s *AuthService) RequestOtp(ctx context.Context, phoneNumber string) error {
	const op = "services.auth.RequestOtp"

	user, err := s.users.GetUserByEmailOrPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	code, err := otp.GenerateCode()
	if err != nil {
		s.log.Error("failed to generate otp code", slog.String("op", op), sl.Err(err))
		return nil
	}
	codeHash, err := otp.GetHash(code)
	if err != nil {
		s.log.Error("failed to hash otp code", slog.String("op", op), sl.Err(err))
		return nil
	}
	if err := s.sessions.StoreOtp(ctx, phoneNumber, codeHash, s.tokens.OtpTTL); err != nil {
		s.log.Error("failed to store otp code", slog.String("op", op), sl.Err(err))
		return nil
	}
	if err := s.notifier.PublishOtpNotice(models.OtpNotice{
		Email:       user.Email,
		PhoneNumber: phoneNumber,
		Code:        code,
	}); err != nil {
		s.log.Error("failed to publish otp notice", slog.String("op", op), sl.Err(err))
	}
	return nil
}

// VerifyOtpResult результат успешного подтверждения телефона.
type VerifyOtpResult struct {
	User        *models.PublicUser
	AccessToken string
}

// VerifyOtp потребляет код подтверждения. Код одноразовый: и успешная,
// и неудачная проверка удаляют его. При успехе телефон помечается
// подтверждённым и выпускается новый токен доступа.
func (s *AuthService) VerifyOtp(ctx context.Context, phoneNumber, code string) (*VerifyOtpResult, error) {
	const op = "services.auth.VerifyOtp"

	codeHash, found, err := s.sessions.ConsumeOtp(ctx, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, ErrInvalidOtp
	}
	if err := otp.CompareHash(codeHash, code); err != nil {
		return nil, ErrInvalidOtp
	}

	user, err := s.users.GetUserByEmailOrPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidOtp
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.MarkPhoneVerified(ctx, user.UID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.IsPhoneVerified = true

	access, err := s.jwtMaker.GenerateAccessToken(user.UID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &VerifyOtpResult{User: user.Public(), AccessToken: access}, nil
}

func (s *AuthService) issueTokenPair(user *models.User) (*AuthResult, error) {
	const op = "services.auth.issueTokenPair"
	access, err := s.jwtMaker.GenerateAccessToken(user.UID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(user.UID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AuthResult{
		User:         user.Public(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
