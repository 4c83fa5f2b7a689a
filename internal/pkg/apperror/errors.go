package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	ErrCodeUpstream      ErrorCode = "UPSTREAM_ERROR"
)

// Kind - закрытый набор категорий ошибок, которые видит клиент.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindStorage    Kind = "storage"
	KindUnknown    Kind = "unknown"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению, чтобы errors.Is работал
// с обёрнутыми экземплярами предопределённых ошибок.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// Kind возвращает категорию ошибки.
func (e *AppError) Kind() Kind {
	return codeToKind(e.Code)
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation - сокращение для ошибок валидации входных данных.
func Validation(err error) *AppError {
	return Wrap(err, ErrCodeValidation, err.Error())
}

// Storage оборачивает ошибку хранилища.
func Storage(err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, "ошибка хранилища")
}

// From приводит произвольную ошибку к AppError.
// Неизвестные ошибки становятся INTERNAL_ERROR и не раскрывают причину клиенту.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrCodeInternal, "внутренняя ошибка сервера")
}

// KindOf возвращает категорию для любой ошибки.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind()
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func codeToKind(code ErrorCode) Kind {
	switch code {
	case ErrCodeUnauthorized, ErrCodeForbidden:
		return KindAuth
	case ErrCodeNotFound, ErrCodeBadRequest, ErrCodeValidation, ErrCodeConflict:
		return KindValidation
	case ErrCodeDatabaseError:
		return KindStorage
	case ErrCodeUpstream:
		return KindNetwork
	default:
		return KindUnknown
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeForbidden
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

func IsUnauthorized(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeUnauthorized
}

var (
	ErrPostNotFound           = New(ErrCodeNotFound, "пост не найден")
	ErrReportNotFound         = New(ErrCodeNotFound, "жалоба не найдена")
	ErrUserNotFound           = New(ErrCodeNotFound, "пользователь не найден")
	ErrWalletNotFound         = New(ErrCodeNotFound, "кошелёк не подключён")
	ErrUnauthorized           = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden              = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials     = New(ErrCodeUnauthorized, "неверный email или пароль")
	ErrInvalidAdminCredential = New(ErrCodeUnauthorized, "неверные учётные данные администратора")
	ErrUserBanned             = New(ErrCodeForbidden, "аккаунт заблокирован")
	ErrAnonymousDisabled      = New(ErrCodeForbidden, "анонимный вход отключён")
	ErrEmailTaken             = New(ErrCodeConflict, "email уже зарегистрирован")
	ErrReportAlreadyReviewed  = New(ErrCodeConflict, "жалоба уже рассмотрена")
	ErrWalletUnavailable      = New(ErrCodeUpstream, "провайдер кошелька недоступен")
)
