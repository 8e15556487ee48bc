package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// Код ошибки PostgreSQL о нарушении уникального ограничения.
const uniqueViolationCode = "23505"

// CreateUser сохраняет нового пользователя и возвращает его UID.
// При нарушении уникальности email или телефона возвращает ErrUserExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var lat, lon sql.NullFloat64
	if user.Location != nil {
		lat = sql.NullFloat64{Float64: user.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: user.Location.Longitude, Valid: true}
	}

	var newUID string
	query := `INSERT INTO users (name, email, phone_number, password_hash, role,
			      business_name, business_address, latitude, longitude)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING uid;`
	if err := s.Db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PhoneNumber, user.PasswordHash, user.Role,
		nullString(user.BusinessName), nullString(user.BusinessAddress),
		lat, lon).Scan(&newUID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmailOrPhone возвращает пользователя, у которого email или
// номер телефона точно совпадает с identifier.
func (s *Storage) GetUserByEmailOrPhone(ctx context.Context, identifier string) (*models.User, error) {
	const op = "storage.GetUserByEmailOrPhone"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := selectUser + ` WHERE email = $1 OR phone_number = $1`
	return s.scanUser(ctx, op, query, identifier)
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := selectUser + ` WHERE uid = $1`
	return s.scanUser(ctx, op, query, userUID)
}

// UpdateLastLogin обновляет отметку последнего входа пользователя.
func (s *Storage) UpdateLastLogin(ctx context.Context, userUID string, at time.Time) error {
	const op = "storage.UpdateLastLogin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET last_login_at = $1 WHERE uid = $2`
	if _, err := s.Db.ExecContext(ctx, query, at, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePasswordHash заменяет хэш пароля пользователя.
func (s *Storage) UpdatePasswordHash(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.UpdatePasswordHash"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET password_hash = $1 WHERE uid = $2`
	res, err := s.Db.ExecContext(ctx, query, passwordHash, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// MarkPhoneVerified помечает телефон пользователя подтверждённым.
func (s *Storage) MarkPhoneVerified(ctx context.Context, userUID string) error {
	const op = "storage.MarkPhoneVerified"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET is_phone_verified = TRUE WHERE uid = $1`
	if _, err := s.Db.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

const selectUser = `SELECT uid, name, email, phone_number, password_hash, role,
			      business_name, business_address, latitude, longitude,
			      is_email_verified, is_phone_verified, created_at, last_login_at
			  FROM users`

func (s *Storage) scanUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	u := &models.User{}
	row := s.Db.QueryRowContext(ctx, query, arg)

	var businessName, businessAddress sql.NullString
	var lat, lon sql.NullFloat64
	var lastLoginAt sql.NullTime
	if err := row.Scan(&u.UID, &u.Name, &u.Email, &u.PhoneNumber, &u.PasswordHash,
		&u.Role, &businessName, &businessAddress, &lat, &lon,
		&u.IsEmailVerified, &u.IsPhoneVerified, &u.CreatedAt, &lastLoginAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u.BusinessName = businessName.String
	u.BusinessAddress = businessAddress.String
	if lat.Valid && lon.Valid {
		u.Location = &models.Location{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	if lastLoginAt.Valid {
		u.LastLoginAt = &lastLoginAt.Time
	}
	return u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
