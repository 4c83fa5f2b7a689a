package common

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/roastblame-backend/internal/dto"
	"github.com/ignatzorin/roastblame-backend/internal/http/middleware"
	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/pkg/apperror"
)

// CurrentActor извлекает владельца сессии из контекста.
func CurrentActor(c *gin.Context) (models.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return models.Actor{}, apperror.ErrUnauthorized
	}
	return actor, nil
}

// BindJSON разбирает тело запроса. Ошибка уже приведена к VALIDATION_ERROR.
func BindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, "некорректное тело запроса")
	}
	return nil
}

// RespondAppError отправляет ошибку в формате {"error","code","kind"}.
func RespondAppError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}

// RespondSuccess sends a standardized success response
func RespondSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, dto.SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// RespondNoContent отвечает 204 без тела.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ParseIntQuery safely reads an integer query parameter with a fallback value
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetPagination extracts limit and offset from query parameters with defaults
func GetPagination(c *gin.Context) (limit, offset int) {
	limit = ParseIntQuery(c, "limit", 20)
	offset = ParseIntQuery(c, "offset", 0)
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return
}
