// Package etag вычисляет слабые валидаторы по содержимому ответа.
package etag

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// Derive возвращает слабый ETag вида W/"<sha1>" для переданных байт.
// Одинаковые байты всегда дают одинаковый токен, поэтому попадание в кэш
// и промах возвращают один и тот же валидатор.
func Derive(data []byte) string {
	sum := sha1.Sum(data)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

// Matches проверяет, присутствует ли token в заголовке If-None-Match.
// Заголовок может содержать список валидаторов через запятую.
func Matches(header, token string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimSpace(candidate) == token {
			return true
		}
	}
	return false
}
