package validation

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

const MinPasswordLength = 8

// ValidatePassword проверяет пароль администратора.
// Требования: не менее 8 символов, заглавная и строчная буква, цифра.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return errors.New("Mật khẩu phải có ít nhất 8 ký tự")
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return errors.New("Mật khẩu phải chứa ít nhất một chữ in hoa")
	}
	if !hasLower {
		return errors.New("Mật khẩu phải chứa ít nhất một chữ thường")
	}
	if !hasNumber {
		return errors.New("Mật khẩu phải chứa ít nhất một chữ số")
	}
	return nil
}
