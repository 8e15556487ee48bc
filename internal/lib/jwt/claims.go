// Package jwt реализует выпуск и парсинг подписанных токенов доступа
// с пользовательскими claim полями.
//
// Claims расширяет стандартные claims JWT, добавляя роль пользователя
// и тип токена (access или refresh). Subject стандартных claims хранит
// уникальный идентификатор пользователя.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Типы выпускаемых токенов.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Ошибки парсинга токена.
var (
	// ErrExpiredToken срок действия токена истёк
	ErrExpiredToken = errors.New("token is expired")
	// ErrMalformedToken токен структурно некорректен
	ErrMalformedToken = errors.New("token is malformed")
	// ErrInvalidSignature подпись токена не прошла проверку
	ErrInvalidSignature = errors.New("token signature is invalid")
	// ErrInvalidToken токен не прошёл валидацию по иной причине
	ErrInvalidToken = errors.New("token is invalid")
)

// Claims описывает данные, хранящиеся в токене.
type Claims struct {
	Role                 string `json:"role"`       // Роль пользователя
	TokenType            string `json:"token_type"` // Тип токена: access или refresh
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (Subject, ExpiresAt, IssuedAt и пр.)
}

// Maker описывает интерфейс для выпуска и парсинга токенов.
type Maker interface {
	// GenerateAccessToken выпускает короткоживущий токен доступа
	GenerateAccessToken(userUID, role string) (string, error)
	// GenerateRefreshToken выпускает долгоживущий токен обновления
	GenerateRefreshToken(userUID, role string) (string, error)
	// ParseToken возвращает *Claims, если токен корректен
	ParseToken(tokenStr string) (*Claims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и раздельных сроков жизни для access и refresh токенов.
type MakerImpl struct {
	secretKey  string        // Секретный ключ для подписи токенов.
	accessTTL  time.Duration // Время жизни токена доступа.
	refreshTTL time.Duration // Время жизни токена обновления.
}

// NewMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewMaker(secretKey string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}
