package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/core"
	"github.com/fatbomb/MealManagement/internal/middleware"
	"github.com/fatbomb/MealManagement/internal/models"
)

// callerIdentity returns the authenticated caller or writes a 401.
func callerIdentity(c *gin.Context) (models.Identity, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok || identity.UserID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: identity not found in context"})
		return models.Identity{}, false
	}
	return identity, true
}

// UserHandler handles user-profile related API endpoints.
type UserHandler struct {
	userService core.UserService
	roleService core.RoleService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, rs core.RoleService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: us, roleService: rs, logger: logger}
}

// InitializeUserProfile handles POST /users/initialize. It is called by the client after
// every sign-in and creates the profile on the first one.
func (h *UserHandler) InitializeUserProfile(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	user, created, err := h.userService.GetOrCreate(c.Request.Context(), identity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, InitializeResponse{User: user, Created: created})
}

// GetCurrentUserProfile handles GET /users/me.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	duties, err := h.roleService.TodayDuties(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{User: user, Duties: duties})
}

// UpdateCurrentUserProfile handles PUT /users/me.
func (h *UserHandler) UpdateCurrentUserProfile(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), identity.UserID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// GetRoster handles GET /roster.
func (h *UserHandler) GetRoster(c *gin.Context) {
	roster, err := h.roleService.GetRoster(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, roster)
}
