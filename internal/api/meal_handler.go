package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/core"
	"github.com/fatbomb/MealManagement/internal/models"
)

// MealHandler handles meal entry endpoints.
type MealHandler struct {
	mealService   core.MealService
	reportService core.ReportService
	logger        *zap.Logger
}

// NewMealHandler creates a new MealHandler.
func NewMealHandler(ms core.MealService, rs core.ReportService, logger *zap.Logger) *MealHandler {
	return &MealHandler{mealService: ms, reportService: rs, logger: logger}
}

// GetMeal handles GET /meals/:userId/:date.
func (h *MealHandler) GetMeal(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	var uri mealURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := h.mealService.GetMeal(c.Request.Context(), identity, uri.UserID, uri.Date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SubmitMeal handles PUT /meals/:userId/:date.
func (h *MealHandler) SubmitMeal(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	var uri mealURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	var req models.SubmitMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	state := models.MealState{
		LunchAvailable:  req.LunchAvailable,
		DinnerAvailable: req.DinnerAvailable,
		ExtraRiceLunch:  req.ExtraRiceLunch,
		ExtraRiceDinner: req.ExtraRiceDinner,
	}
	sub, err := h.mealService.SubmitMeal(c.Request.Context(), identity, uri.UserID, uri.Date, state)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MealResponse{Record: sub.Record, Delta: sub.Delta, Editability: sub.Editability})
}

// MonthGrid handles GET /meals/month/:month.
func (h *MealHandler) MonthGrid(c *gin.Context) {
	var uri monthURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	grid, err := h.reportService.MonthGrid(c.Request.Context(), uri.Month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, grid)
}
