package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/pkg/apperror"
	"github.com/ignatzorin/roastblame-backend/internal/service"
)

// ContextActorKey - ключ gin.Context, под которым лежит models.Actor.
const ContextActorKey = "actor"

// AuthMiddleware проверяет JWT access токен.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			AbortWithError(c, apperror.ErrUnauthorized)
			return
		}

		actor, err := tokens.ParseAccess(raw)
		if err != nil {
			AbortWithError(c, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "токен невалиден"))
			return
		}

		c.Set(ContextActorKey, actor)
		c.Next()
	}
}

// OptionalAuth кладёт actor в контекст, если передан валидный токен,
// и пропускает запрос без него.
func OptionalAuth(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := bearerToken(c); raw != "" {
			if actor, err := tokens.ParseAccess(raw); err == nil {
				c.Set(ContextActorKey, actor)
			}
		}
		c.Next()
	}
}

// AdminOnly пропускает только сессии с ролью admin. Ставится после AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			AbortWithError(c, apperror.ErrUnauthorized)
			return
		}
		if !actor.IsAdmin() {
			AbortWithError(c, apperror.ErrForbidden)
			return
		}
		c.Next()
	}
}

// ActorFrom достаёт владельца сессии из контекста.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	raw, exists := c.Get(ContextActorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := raw.(models.Actor)
	return actor, ok
}

// bearerToken читает токен из заголовка Authorization.
// Браузерный WebSocket не умеет слать заголовки, поэтому допускается ?token=.
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return c.Query("token")
}
