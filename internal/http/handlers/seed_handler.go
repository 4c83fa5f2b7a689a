package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/roastblame-backend/internal/http/handlers/common"
	"github.com/ignatzorin/roastblame-backend/internal/service"
)

// SeedHandler наполняет пустое хранилище демонстрационными роастами.
// Маршрут регистрируется только в development.
type SeedHandler struct {
	seedService *service.SeedService
	posts       *service.PostService
}

// NewSeedHandler создаёт новый seed handler.
func NewSeedHandler(seedService *service.SeedService, posts *service.PostService) *SeedHandler {
	return &SeedHandler{
		seedService: seedService,
		posts:       posts,
	}
}

// SeedResponse представляет ответ на запрос генерации данных.
type SeedResponse struct {
	Message  string `json:"message"`
	NumPosts int    `json:"num_posts"`
}

// Seed генерирует демо посты и перечитывает ленту.
// POST /api/seed
func (h *SeedHandler) Seed(c *gin.Context) {
	n, err := h.seedService.SeedDemoPosts(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	if n > 0 {
		if err := h.posts.Reload(c.Request.Context()); err != nil {
			common.RespondAppError(c, err)
			return
		}
	}

	message := "демо посты добавлены"
	if n == 0 {
		message = "хранилище не пустое, демо посты не добавлены"
	}
	c.JSON(http.StatusOK, SeedResponse{Message: message, NumPosts: n})
}
