// Package storage реализует хранилище учётных записей на основе PostgreSQL.
// Уникальность email и номера телефона обеспечивается ограничениями базы,
// поэтому создание пользователя — одна атомарная операция вставки.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища.
var (
	// ErrUserExists пользователь с таким email или телефоном уже существует
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound пользователь не найден
	ErrUserNotFound = errors.New("user not found")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	Db *sql.DB
}

// New открывает соединение с PostgreSQL по строке подключения.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{Db: db}, nil
}
