package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/roastblame-backend/internal/dto"
	"github.com/ignatzorin/roastblame-backend/internal/http/handlers/common"
	"github.com/ignatzorin/roastblame-backend/internal/service"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(s *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: s}
}

// CreateReport POST /posts/:id/reports
func (h *ReportHandler) CreateReport(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var req dto.CreateReportRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	report, err := h.svc.CreateReport(c.Request.Context(), actor, c.Param("id"), req.Reason, req.Details)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// ListReports GET /admin/reports?status=
func (h *ReportHandler) ListReports(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	reports, err := h.svc.ListReports(c.Request.Context(), actor, c.Query("status"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// Stats GET /admin/reports/stats
func (h *ReportHandler) Stats(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	stats, err := h.svc.ReportStats(c.Request.Context(), actor)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ReviewReport PUT /admin/reports/:id
func (h *ReportHandler) ReviewReport(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var req dto.ReviewReportRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	report, err := h.svc.ReviewReport(c.Request.Context(), actor, c.Param("id"), req.Status, req.Notes)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
