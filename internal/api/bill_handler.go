package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/core"
	"github.com/fatbomb/MealManagement/internal/models"
)

// BillHandler handles the monthly bill endpoints.
type BillHandler struct {
	billService core.BillService
	logger      *zap.Logger
}

// NewBillHandler creates a new BillHandler.
func NewBillHandler(bs core.BillService, logger *zap.Logger) *BillHandler {
	return &BillHandler{billService: bs, logger: logger}
}

// GetBill handles GET /bills/:month.
func (h *BillHandler) GetBill(c *gin.Context) {
	var uri monthURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	bill, err := h.billService.GetBill(c.Request.Context(), uri.Month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// SaveBill handles PUT /bills/:month.
func (h *BillHandler) SaveBill(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	var uri monthURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	var bill models.Bill
	if err := c.ShouldBindJSON(&bill); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.billService.SaveBill(c.Request.Context(), identity, uri.Month, bill); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}
