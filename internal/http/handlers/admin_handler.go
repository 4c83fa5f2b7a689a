package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/roastblame-backend/internal/dto"
	"github.com/ignatzorin/roastblame-backend/internal/http/handlers/common"
	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/service"
)

// AdminHandler - панель модерации. Все ручки, кроме GetSettings,
// закрыты middleware.AdminOnly.
type AdminHandler struct {
	admin *service.AdminService
	posts *service.PostService
}

// NewAdminHandler создаёт хэндлер.
func NewAdminHandler(admin *service.AdminService, posts *service.PostService) *AdminHandler {
	return &AdminHandler{admin: admin, posts: posts}
}

// Overview обрабатывает GET /admin/overview.
func (h *AdminHandler) Overview(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	overview, err := h.admin.Overview(c.Request.Context(), actor)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// DeletePost обрабатывает DELETE /admin/posts/:id.
func (h *AdminHandler) DeletePost(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var req dto.DeletePostRequest
	// Причина необязательна, тело может отсутствовать
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = c.Query("reason")
	}

	if err := h.posts.DeletePost(c.Request.Context(), actor, c.Param("id"), req.Reason); err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondNoContent(c)
}

// ListUsers обрабатывает GET /admin/users?status=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	users, err := h.admin.ListUsers(c.Request.Context(), actor, c.Query("status"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// BanUser обрабатывает POST /admin/users/:id/ban.
func (h *AdminHandler) BanUser(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var req dto.BanUserRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	user, err := h.admin.BanUser(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UnbanUser обрабатывает POST /admin/users/:id/unban.
func (h *AdminHandler) UnbanUser(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	user, err := h.admin.UnbanUser(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListLogs обрабатывает GET /admin/logs?limit=.
func (h *AdminHandler) ListLogs(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	logs, err := h.admin.ListAdminLogs(c.Request.Context(), actor, common.ParseIntQuery(c, "limit", service.DefaultAdminLogLimit))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// GetSettings обрабатывает GET /settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.admin.GetSettings(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings обрабатывает PUT /admin/settings.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var req dto.UpdateSettingsRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	settings, err := h.admin.UpdateSettings(c.Request.Context(), actor, models.Settings{
		SiteName:            req.SiteName,
		SiteDescription:     req.SiteDescription,
		LogoURL:             req.LogoURL,
		PrimaryColor:        req.PrimaryColor,
		SecondaryColor:      req.SecondaryColor,
		AllowAnonymous:      req.AllowAnonymous,
		ModerationEnabled:   req.ModerationEnabled,
		AutoModerationLevel: req.AutoModerationLevel,
		GuidelinesText:      req.GuidelinesText,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
