package service

import (
	"errors"

	"github.com/ignatzorin/roastblame-backend/internal/pkg/apperror"
	"github.com/ignatzorin/roastblame-backend/internal/repository/common"
)

// storageError приводит ошибку хранилища к AppError.
// Отсутствующая запись превращается в notFound, если он задан.
func storageError(err error, notFound *apperror.AppError) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, common.ErrNotFound) {
		return notFound
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Storage(err)
}
