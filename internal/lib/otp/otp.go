// Package otp реализует генерацию и проверку одноразовых числовых кодов
// подтверждения телефона.
//
// Код хранится только в виде bcrypt-хэша, оригинал уходит пользователю
// по внешнему каналу доставки.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const codeLength = 6

// GenerateCode возвращает случайный шестизначный числовой код.
func GenerateCode() (string, error) {
	const op = "otp.GenerateCode"
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("%0*d", codeLength, n), nil
}

// GetHash возвращает bcrypt-хэш кода для хранения.
func GetHash(code string) (string, error) {
	const op = "otp.GetHash"
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hash), nil
}

// CompareHash проверяет код на соответствие сохранённому хэшу.
func CompareHash(originalHash, code string) error {
	const op = "otp.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(code)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
