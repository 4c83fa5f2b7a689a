package common

import "errors"

// Ошибки, которые возвращают оба драйвера хранилища (postgres и bolt).
// Сервисы сравнивают их через errors.Is и переводят в apperror.
var (
	ErrNotFound      = errors.New("repository: запись не найдена")
	ErrAlreadyExists = errors.New("repository: запись уже существует")
	ErrInvalidInput  = errors.New("repository: некорректные данные")
	// ErrConflict - запись уже не в том состоянии (например, жалоба рассмотрена).
	ErrConflict = errors.New("repository: конфликт состояния")
)
