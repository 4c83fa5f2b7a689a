package validation

import (
	"fmt"
	"unicode/utf8"
)

// MinPasswordLength - минимальная длина пароля при регистрации.
const MinPasswordLength = 6

// ValidatePassword проверяет пароль при регистрации.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("пароль должен быть не менее %d символов", MinPasswordLength)
	}
	return nil
}
