// Package models содержит доменную модель пользователя маркетплейса,
// включающую данные учётной записи, хэш пароля, роль и бизнес-поля.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей. Бизнес-аккаунт обязан заполнить BusinessName и BusinessAddress.
const (
	RoleConsumer = "consumer"
	RoleBusiness = "business"
)

// Location географическая точка пользователя или бизнеса.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID             string     // Уникальный идентификатор пользователя
	Name            string     // Отображаемое имя
	Email           string     // Электронная почта (уникальная)
	PhoneNumber     string     // Номер телефона (уникальный)
	PasswordHash    string     // Хэш пароля пользователя
	Role            string     // Роль пользователя, consumer или business
	BusinessName    string     // Название бизнеса, только для role=business
	BusinessAddress string     // Адрес бизнеса, только для role=business
	Location        *Location  // Геолокация, опционально
	IsEmailVerified bool       // Подтверждена ли почта
	IsPhoneVerified bool       // Подтверждён ли телефон
	CreatedAt       time.Time  // Дата создания учётной записи
	LastLoginAt     *time.Time // Дата последнего входа
}

// PublicUser публичная проекция пользователя для ответов API.
// Хэш пароля сюда не попадает.
type PublicUser struct {
	UID             string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PhoneNumber     string     `json:"phoneNumber"`
	Role            string     `json:"role"`
	BusinessName    string     `json:"businessName,omitempty"`
	BusinessAddress string     `json:"businessAddress,omitempty"`
	Location        *Location  `json:"location,omitempty"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	IsPhoneVerified bool       `json:"isPhoneVerified"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
}

// Public возвращает публичную проекцию пользователя.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		UID:             u.UID,
		Name:            u.Name,
		Email:           u.Email,
		PhoneNumber:     u.PhoneNumber,
		Role:            u.Role,
		BusinessName:    u.BusinessName,
		BusinessAddress: u.BusinessAddress,
		Location:        u.Location,
		IsEmailVerified: u.IsEmailVerified,
		IsPhoneVerified: u.IsPhoneVerified,
		CreatedAt:       u.CreatedAt,
		LastLoginAt:     u.LastLoginAt,
	}
}
