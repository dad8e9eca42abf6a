package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/core"
	"github.com/fatbomb/MealManagement/internal/middleware"
)

// errorStatus maps a core error to its HTTP status and public message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest, core.ErrInvalidInput.Error()
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden, core.ErrForbidden.Error()
	case errors.Is(err, core.ErrMealLocked):
		return http.StatusConflict, core.ErrMealLocked.Error()
	case errors.Is(err, core.ErrLunchLocked):
		return http.StatusConflict, core.ErrLunchLocked.Error()
	case errors.Is(err, core.ErrMissingBill):
		return http.StatusNotFound, core.ErrMissingBill.Error()
	case errors.Is(err, core.ErrDuesNotComputable):
		return http.StatusUnprocessableEntity, core.ErrDuesNotComputable.Error()
	case errors.Is(err, core.ErrUserNotFound):
		return http.StatusNotFound, core.ErrUserNotFound.Error()
	case errors.Is(err, core.ErrStoreWrite):
		return http.StatusServiceUnavailable, core.ErrStoreWrite.Error()
	default:
		return http.StatusInternalServerError, "An unexpected internal server error occurred."
	}
}

// respondError writes err as an ErrorResponse. Unexpected errors are logged and their
// details withheld from the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.RequestIDFrom(c)),
			zap.Error(err),
		)
	}
	if status == http.StatusInternalServerError {
		c.JSON(status, ErrorResponse{Error: message})
		return
	}
	c.JSON(status, ErrorResponse{Error: message, Details: err.Error()})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: err.Error()})
}
