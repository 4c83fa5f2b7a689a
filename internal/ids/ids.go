// Package ids генерирует идентификаторы вида "<prefix>_<ulid>".
package ids

import (
	"crypto/rand"
	"slices"
	"strings"

	"github.com/oklog/ulid"
)

// New возвращает новый идентификатор с префиксом.
// ULID сортируется по времени создания.
func New(prefix string) string {
	return prefix + "_" + strings.ToLower(ulid.MustNew(ulid.Now(), rand.Reader).String())
}

// HasPrefix проверяет, что id начинается с "<prefix>_".
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"_")
}

// Valid проверяет формат "<prefix>_<ulid>". Если переданы prefixes,
// префикс должен совпадать с одним из них.
func Valid(id string, prefixes ...string) bool {
	idx := strings.LastIndexByte(id, '_')
	if idx <= 0 || idx == len(id)-1 {
		return false
	}
	if len(prefixes) > 0 && !slices.Contains(prefixes, id[:idx]) {
		return false
	}
	_, err := ulid.Parse(strings.ToUpper(id[idx+1:]))
	return err == nil
}
