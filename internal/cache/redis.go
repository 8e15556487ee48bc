// Package cache реализует хранение короткоживущего состояния сессий в redis:
// журнал отозванных токенов, одноразовые токены сброса пароля и коды
// подтверждения телефона. Все ключи ограничены по TTL, одноразовость
// обеспечивается атомарным GETDEL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/marketplace-backend/internal/config"
)

const (
	revokedKeyPrefix = "revoked:"
	resetKeyPrefix   = "reset:"
	otpKeyPrefix     = "otp:"
)

// Cache обертка над клиентом redis.
type Cache struct {
	Db *redis.Client
}

// InitServer создает клиент redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// RevokeToken помещает идентификатор токена (jti) в журнал отозванных.
// TTL должен равняться оставшемуся времени жизни токена.
func (c *Cache) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	const op = "cache.RevokeToken"
	if ttl <= 0 {
		// токен уже истёк, в журнале не нуждается
		return nil
	}
	if err := c.Db.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsTokenRevoked сообщает, числится ли токен в журнале отозванных.
func (c *Cache) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	const op = "cache.IsTokenRevoked"
	n, err := c.Db.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// StoreResetToken сохраняет токен сброса пароля с привязкой к пользователю.
func (c *Cache) StoreResetToken(ctx context.Context, token, userUID string, ttl time.Duration) error {
	const op = "cache.StoreResetToken"
	if err := c.Db.Set(ctx, resetKeyPrefix+token, userUID, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConsumeResetToken атомарно извлекает и удаляет токен сброса.
// Возвращает UID пользователя и признак, что токен был найден.
// Повторное потребление того же токена всегда вернет found=false.
func (c *Cache) ConsumeResetToken(ctx context.Context, token string) (string, bool, error) {
	const op = "cache.ConsumeResetToken"
	userUID, err := c.Db.GetDel(ctx, resetKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return userUID, true, nil
}

// StoreOtp сохраняет хэш одноразового кода для номера телефона.
func (c *Cache) StoreOtp(ctx context.Context, phoneNumber, codeHash string, ttl time.Duration) error {
	const op = "cache.StoreOtp"
	if err := c.Db.Set(ctx, otpKeyPrefix+phoneNumber, codeHash, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConsumeOtp атомарно извлекает и удаляет хэш кода для номера телефона.
func (c *Cache) ConsumeOtp(ctx context.Context, phoneNumber string) (string, bool, error) {
	const op = "cache.ConsumeOtp"
	codeHash, err := c.Db.GetDel(ctx, otpKeyPrefix+phoneNumber).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return codeHash, true, nil
}
