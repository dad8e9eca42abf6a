package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/core"
	"github.com/fatbomb/MealManagement/internal/middleware"
)

// Services groups the core services the handlers depend on.
type Services struct {
	Users      core.UserService
	Roles      core.RoleService
	Meals      core.MealService
	Bills      core.BillService
	Dues       core.DuesService
	Reports    core.ReportService
	Reconciler core.Reconciler
}

// SetupRoutes registers the /api/v1 routes and /health on router. Global middleware
// (request id, logging, recovery, CORS) is expected to be applied by the caller.
func SetupRoutes(router *gin.Engine, logger *zap.Logger, verifier middleware.TokenVerifier, svc Services) error {
	if err := RegisterValidators(); err != nil {
		return err
	}

	authMW := middleware.NewAuthMiddleware(verifier, svc.Users, svc.Roles, logger.Named("auth"))

	userHandler := NewUserHandler(svc.Users, svc.Roles, logger)
	mealHandler := NewMealHandler(svc.Meals, svc.Reports, logger)
	billHandler := NewBillHandler(svc.Bills, logger)
	duesHandler := NewDuesHandler(svc.Dues, logger)
	reportHandler := NewReportHandler(svc.Reports, logger)
	adminHandler := NewAdminHandler(svc.Users, svc.Roles, svc.Reconciler, logger)

	apiV1 := router.Group("/api/v1", authMW.VerifyToken())
	{
		users := apiV1.Group("/users")
		{
			users.POST("/initialize", userHandler.InitializeUserProfile)
			users.GET("/me", userHandler.GetCurrentUserProfile)
			users.PUT("/me", userHandler.UpdateCurrentUserProfile)
			users.GET("", userHandler.ListUsers)
		}
		apiV1.GET("/roster", userHandler.GetRoster)

		meals := apiV1.Group("/meals")
		{
			meals.GET("/month/:month", mealHandler.MonthGrid)
			meals.GET("/:userId/:date", mealHandler.GetMeal)
			meals.PUT("/:userId/:date", mealHandler.SubmitMeal)
		}

		bills := apiV1.Group("/bills")
		{
			bills.GET("/:month", billHandler.GetBill)
			bills.PUT("/:month", billHandler.SaveBill)
		}

		dues := apiV1.Group("/dues")
		{
			dues.GET("/:month", duesHandler.MonthStatement)
			dues.GET("/:month/:userId", duesHandler.GetBalance)
			dues.POST("/:month/:userId/payments", duesHandler.RecordPayment)
		}

		reports := apiV1.Group("/reports")
		{
			reports.GET("/daily/:date", reportHandler.Daily)
			reports.GET("/range", reportHandler.Range)
		}

		admin := apiV1.Group("/admin", middleware.RequireAdmin())
		{
			admin.PUT("/users/:userId/mess-manager", adminHandler.SetMessManager)
			admin.PUT("/roster/:kind", adminHandler.SetRoster)
			admin.PUT("/mess-managers", adminHandler.SetMonthManagers)
			admin.POST("/reconcile/:month", adminHandler.Reconcile)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	logger.Info("API routes configured under /api/v1 and /health")
	return nil
}
