package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/roastblame-backend/internal/ids"
	"github.com/ignatzorin/roastblame-backend/internal/pkg/apperror"
)

// IDValidator проверяет, что параметр пути - идентификатор вида "<prefix>_<ulid>"
// с одним из разрешённых префиксов (любым, если prefixes пуст).
// Использование: router.GET("/posts/:id", IDValidator("id", models.PrefixPost), handler.GetPost)
func IDValidator(paramName string, prefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		if raw == "" {
			AbortWithError(c, apperror.New(apperror.ErrCodeBadRequest, "параметр "+paramName+" обязателен"))
			return
		}
		if !ids.Valid(raw, prefixes...) {
			AbortWithError(c, apperror.New(apperror.ErrCodeBadRequest, "параметр "+paramName+" имеет неверный формат"))
			return
		}
		c.Next()
	}
}
