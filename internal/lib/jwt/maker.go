package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// GenerateAccessToken создает токен доступа для пользователя userUID с ролью role,
// подписывая его секретным ключом. Время жизни токена определяется accessTTL.
func (j *MakerImpl) GenerateAccessToken(userUID, role string) (string, error) {
	return j.generate(userUID, role, TokenTypeAccess, j.accessTTL)
}

// GenerateRefreshToken создает токен обновления для пользователя userUID.
// Токен обновления пригоден только для выпуска нового токена доступа.
func (j *MakerImpl) GenerateRefreshToken(userUID, role string) (string, error) {
	return j.generate(userUID, role, TokenTypeRefresh, j.refreshTTL)
}

func (j *MakerImpl) generate(userUID, role, tokenType string, ttl time.Duration) (string, error) {
	const op = "jwt.generate"
	now := time.Now()
	claims := Claims{
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userUID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken парсит токен, проверяет его подпись и срок действия,
// возвращает Claims с данными, если токен корректен.
//
// Ошибки классифицируются: ErrExpiredToken, ErrMalformedToken,
// ErrInvalidSignature, ErrInvalidToken.
func (j *MakerImpl) ParseToken(tokenStr string) (*Claims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%s: %w", op, ErrExpiredToken)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%s: %w", op, ErrMalformedToken)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidSignature)
		default:
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}
