package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/fatbomb/MealManagement/internal/config"
)

const defaultClientURL = "http://localhost:3000"

// CORSMiddleware allows the configured web client, or a comma-separated list of them.
func CORSMiddleware(appConfig *config.Config) gin.HandlerFunc {
	var origins []string
	if appConfig != nil {
		for _, o := range strings.Split(appConfig.ClientURL, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	if len(origins) == 0 {
		origins = []string{defaultClientURL}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
