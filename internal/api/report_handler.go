package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/core"
)

// ReportHandler serves meal statistics.
type ReportHandler struct {
	reportService core.ReportService
	logger        *zap.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs core.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reportService: rs, logger: logger}
}

// Daily handles GET /reports/daily/:date.
func (h *ReportHandler) Daily(c *gin.Context) {
	var uri dateURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	stats, err := h.reportService.DailyStats(c.Request.Context(), uri.Date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Range handles GET /reports/range?from=&to=.
func (h *ReportHandler) Range(c *gin.Context) {
	var q rangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	stats, err := h.reportService.RangeStats(c.Request.Context(), q.From, q.To)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
