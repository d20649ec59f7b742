package util

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

const (
	LinkCodeLength      = 12
	linkCodeMaxAttempts = 5
)

var ErrLinkCodeExhausted = errors.New("не удалось подобрать уникальный код ссылки")

// generateRandomToken : генерирует случайный токен длиной length символов
func generateRandomToken(length int) (string, error) {
	byteLength := (length + 1) / 2 // hex кодирует 1 байт = 2 символа
	bytes := make([]byte, byteLength)

	if _, err := rand.Read(bytes); err != nil {
		return "", LogError("[util] ошибка генерации токена", err)
	}

	return hex.EncodeToString(bytes)[:length], nil
}

// GenerateUniqueLinkCode : короткий случайный код, для которого exists вернул false
func GenerateUniqueLinkCode(exists func(code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < linkCodeMaxAttempts; attempt++ {
		code, err := generateRandomToken(LinkCodeLength)
		if err != nil {
			return "", err
		}

		taken, err := exists(code)
		if err != nil {
			return "", LogError("[util] ошибка проверки кода ссылки", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrLinkCodeExhausted
}
