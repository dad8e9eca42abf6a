package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/core"
	"github.com/fatbomb/MealManagement/internal/models"
)

// AdminHandler handles role assignment and maintenance endpoints.
type AdminHandler struct {
	userService core.UserService
	roleService core.RoleService
	reconciler  core.Reconciler
	logger      *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(us core.UserService, rs core.RoleService, rec core.Reconciler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{userService: us, roleService: rs, reconciler: rec, logger: logger}
}

// SetMessManager handles PUT /admin/users/:userId/mess-manager.
func (h *AdminHandler) SetMessManager(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	userID := c.Param("userId")
	var req models.SetMessManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.userService.SetMessManager(c.Request.Context(), identity, userID, req.IsMessManager); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetRoster handles PUT /admin/roster/:kind.
func (h *AdminHandler) SetRoster(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req models.SetRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	kind := models.DutyKind(c.Param("kind"))
	if err := h.roleService.SetDutyRoster(c.Request.Context(), identity, kind, req.Days); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetMonthManagers handles PUT /admin/mess-managers.
func (h *AdminHandler) SetMonthManagers(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req models.SetMonthManagersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.roleService.SetMonthManagers(c.Request.Context(), identity, req.Months); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reconcile handles POST /admin/reconcile/:month?repair=true.
func (h *AdminHandler) Reconcile(c *gin.Context) {
	var uri monthURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	var q reconcileQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	report, err := h.reconciler.ReconcileMonth(c.Request.Context(), uri.Month, q.Repair)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
