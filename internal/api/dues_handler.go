package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/core"
	"github.com/fatbomb/MealManagement/internal/models"
)

// DuesHandler handles dues and payment endpoints.
type DuesHandler struct {
	duesService core.DuesService
	logger      *zap.Logger
}

// NewDuesHandler creates a new DuesHandler.
func NewDuesHandler(ds core.DuesService, logger *zap.Logger) *DuesHandler {
	return &DuesHandler{duesService: ds, logger: logger}
}

// MonthStatement handles GET /dues/:month.
func (h *DuesHandler) MonthStatement(c *gin.Context) {
	var uri monthURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	stmt, err := h.duesService.MonthStatement(c.Request.Context(), uri.Month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, roundStatement(stmt))
}

// GetBalance handles GET /dues/:month/:userId.
func (h *DuesHandler) GetBalance(c *gin.Context) {
	var uri userMonthURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	balance, err := h.duesService.OutstandingBalance(c.Request.Context(), uri.UserID, uri.Month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newBalanceResponse(balance))
}

// RecordPayment handles POST /dues/:month/:userId/payments.
func (h *DuesHandler) RecordPayment(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	var uri userMonthURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	var req models.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	rec, err := h.duesService.RecordPayment(c.Request.Context(), identity, uri.UserID, uri.Month, req.Amount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rec.AmountGiven = money(rec.AmountGiven)
	c.JSON(http.StatusCreated, rec)
}
