package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/roastblame-backend/internal/dto"
	"github.com/ignatzorin/roastblame-backend/internal/logger"
	"github.com/ignatzorin/roastblame-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки, добавленные через c.Error, если
// обработчик сам не записал ответ.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		WriteError(c, c.Errors.Last().Err)
	}
}

// WriteError приводит ошибку к AppError и пишет ответ {"error","code","kind"}.
// Причина внутренних ошибок попадает только в лог.
func WriteError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	logError(c, appErr)
	c.JSON(appErr.HTTPStatus, errorBody(appErr))
}

// AbortWithError делает то же, что WriteError, и прерывает цепочку.
func AbortWithError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	logError(c, appErr)
	c.AbortWithStatusJSON(appErr.HTTPStatus, errorBody(appErr))
}

func errorBody(appErr *apperror.AppError) dto.ErrorResponse {
	return dto.ErrorResponse{
		Error: appErr.Message,
		Code:  string(appErr.Code),
		Kind:  string(appErr.Kind()),
	}
}

func logError(c *gin.Context, appErr *apperror.AppError) {
	entry := logger.L().WithFields(logrus.Fields{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
		"code":   appErr.Code,
		"kind":   appErr.Kind(),
	})
	if appErr.Cause != nil {
		entry = entry.WithField("cause", appErr.Cause.Error())
	}

	switch appErr.Kind() {
	case apperror.KindStorage, apperror.KindUnknown, apperror.KindNetwork:
		entry.Error("request error")
	default:
		entry.Debug("request error")
	}
}
