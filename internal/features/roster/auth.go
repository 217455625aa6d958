// Package roster — auth.go проверяет пароль для /login по Argon2id.
// Хеш задаётся переменной ADMIN_PASSWORD_HASH в стандартном формате
// $argon2id$v=19$m=...,t=...,p=...$salt$hash (генерируется scripts/generate_hash.go).
package roster

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"
)

// VerifyPassword сверяет пароль с Argon2id-хешем.
// Любая проблема с форматом хеша — false: лучше отказать во входе,
// чем пустить по битой конфигурации.
func VerifyPassword(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		log.Error("ADMIN_PASSWORD_HASH имеет неверный формат")
		return false
	}

	var (
		memory      uint32
		iterations  uint32
		parallelism uint8
	)
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	// Декодируем соль
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}

	// Декодируем хеш
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	// Вычисляем хеш введённого пароля
	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравниваем в постоянном времени (защита от timing attack)
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}
