package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fatbomb/MealManagement/internal/api"
	"github.com/fatbomb/MealManagement/internal/cache"
	"github.com/fatbomb/MealManagement/internal/config"
	"github.com/fatbomb/MealManagement/internal/core"
	"github.com/fatbomb/MealManagement/internal/db"
	"github.com/fatbomb/MealManagement/internal/middleware"
	"github.com/fatbomb/MealManagement/internal/scheduler"
)

func newLogger(ginMode string) (*zap.Logger, error) {
	if strings.ToLower(ginMode) != "release" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func main() {
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	zapLogger, err := newLogger(appConfig.GinMode)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Application configuration loaded",
		zap.String("timezone", appConfig.Timezone),
		zap.Float64("lunchWeight", appConfig.Tariff.LunchWeight),
		zap.Float64("extraRiceRate", appConfig.Tariff.ExtraRiceRate),
	)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()

	clients, err := db.InitFirestore(initCtx, appConfig, zapLogger.Named("db"))
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()

	var totalsCache cache.Cache = cache.NopCache{}
	if appConfig.RedisAddress != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.RedisConfig{
			Address:  appConfig.RedisAddress,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		}, zapLogger.Named("cache"))
		if err != nil {
			zapLogger.Warn("Redis unavailable, household totals will not be cached", zap.Error(err))
		} else {
			defer redisCache.Close()
			totalsCache = redisCache
		}
	}

	userRepo := db.NewFirestoreUserRepository(clients.Firestore)
	mealRepo := db.NewFirestoreMealRepository(clients.Firestore)
	aggRepo := db.NewFirestoreAggregateRepository(clients.Firestore)
	billRepo := db.NewFirestoreBillRepository(clients.Firestore)
	duesRepo := db.NewFirestoreDuesRepository(clients.Firestore)
	rolesRepo := db.NewFirestoreRolesRepository(clients.Firestore)

	coreLogger := zapLogger.Named("core")
	totals := core.NewHouseholdTotals(aggRepo, userRepo, totalsCache, appConfig.CacheTTL, coreLogger)
	reconciler := core.NewReconciler(mealRepo, aggRepo, userRepo, totals, coreLogger.Named("reconcile"))
	services := api.Services{
		Users:      core.NewUserService(userRepo, coreLogger),
		Roles:      core.NewRoleService(rolesRepo, userRepo, appConfig.Location, time.Now, coreLogger),
		Meals:      core.NewMealService(mealRepo, userRepo, totals, core.NewEditPolicy(appConfig), time.Now, coreLogger.Named("meals")),
		Bills:      core.NewBillService(billRepo, coreLogger),
		Dues:       core.NewDuesService(billRepo, duesRepo, userRepo, aggRepo, totals, appConfig.Tariff, coreLogger.Named("dues")),
		Reports:    core.NewReportService(aggRepo, mealRepo, userRepo),
		Reconciler: reconciler,
	}

	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zapLogger.Named("http")))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	if err := api.SetupRoutes(router, zapLogger.Named("api"), clients.Auth, services); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to set up routes", zap.Error(err))
	}

	jobs := scheduler.NewScheduler(appConfig.ReconcileCron, reconciler, appConfig.Location, zapLogger.Named("scheduler"))
	if err := jobs.Start(); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to start scheduler", zap.Error(err))
	}

	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	jobs.Stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully")
}
